package implementations

import (
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// UnstableRockBehavior реализует неустойчивую породу.
// Это полный куб, но без опоры снизу или сбоку он обрушается.
type UnstableRockBehavior struct{ solidCube }

// ID возвращает идентификатор блока
func (b *UnstableRockBehavior) ID() block.BlockID {
	return block.UnstableRockBlockID
}

// Name возвращает имя блока
func (b *UnstableRockBehavior) Name() string {
	return "Unstable Rock"
}

func (b *UnstableRockBehavior) StabilizationRating() int { return 0 }

// Unstable возвращает true: блок участвует в симуляции обвалов
func (b *UnstableRockBehavior) Unstable() bool { return true }

// FallSound возвращает звук падения обломков
func (b *UnstableRockBehavior) FallSound() string { return "effect/rockslide" }
