package implementations

import (
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// AirBehavior реализует поведение пустого блока (воздуха)
type AirBehavior struct{}

// ID возвращает идентификатор блока
func (b *AirBehavior) ID() block.BlockID {
	return block.AirBlockID
}

// Name возвращает имя блока
func (b *AirBehavior) Name() string {
	return "Air"
}

// FaceSolid: у воздуха нет сплошных граней
func (b *AirBehavior) FaceSolid(face vec.Facing) bool {
	return false
}

func (b *AirBehavior) StabilizationRating() int { return 0 }

func (b *AirBehavior) Unstable() bool { return false }
