package implementations

import (
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// SupportBehavior: крепь (стойка, колонна) с явным рейтингом стабилизации.
// Рейтинг N продлевает дальность опоры на N-1 блоков.
type SupportBehavior struct {
	id     block.BlockID
	name   string
	rating int
}

// NewSupportBehavior создаёт крепь с заданным рейтингом
func NewSupportBehavior(id block.BlockID, name string, rating int) *SupportBehavior {
	return &SupportBehavior{id: id, name: name, rating: rating}
}

func (b *SupportBehavior) ID() block.BlockID { return b.id }

func (b *SupportBehavior) Name() string { return b.name }

// FaceSolid: стойка передаёт нагрузку только вертикально
func (b *SupportBehavior) FaceSolid(face vec.Facing) bool {
	return face == vec.FaceUp || face == vec.FaceDown
}

func (b *SupportBehavior) StabilizationRating() int { return b.rating }

func (b *SupportBehavior) Unstable() bool { return false }
