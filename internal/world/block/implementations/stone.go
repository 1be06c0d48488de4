package implementations

import (
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// solidCube: полный куб: все шесть граней сплошные.
type solidCube struct{}

func (solidCube) FaceSolid(face vec.Facing) bool { return true }

// StoneBehavior реализует поведение блока камня.
// Камень устойчив: сам не обрушается, но и крепью не считается.
type StoneBehavior struct{ solidCube }

// ID возвращает идентификатор блока
func (b *StoneBehavior) ID() block.BlockID {
	return block.StoneBlockID
}

// Name возвращает имя блока
func (b *StoneBehavior) Name() string {
	return "Stone"
}

func (b *StoneBehavior) StabilizationRating() int { return 0 }

func (b *StoneBehavior) Unstable() bool { return false }

// BedrockBehavior: коренная порода в основании мира
type BedrockBehavior struct{ solidCube }

func (b *BedrockBehavior) ID() block.BlockID { return block.BedrockBlockID }

func (b *BedrockBehavior) Name() string { return "Bedrock" }

func (b *BedrockBehavior) StabilizationRating() int { return 0 }

func (b *BedrockBehavior) Unstable() bool { return false }
