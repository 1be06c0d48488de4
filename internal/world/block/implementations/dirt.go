package implementations

import (
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// DirtBehavior реализует поведение блока земли
type DirtBehavior struct{ solidCube }

// ID возвращает идентификатор блока
func (b *DirtBehavior) ID() block.BlockID {
	return block.DirtBlockID
}

// Name возвращает имя блока
func (b *DirtBehavior) Name() string {
	return "Dirt"
}

func (b *DirtBehavior) StabilizationRating() int { return 0 }

func (b *DirtBehavior) Unstable() bool { return false }
