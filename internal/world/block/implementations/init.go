package implementations

import "github.com/annel0/mmo-cavein/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	// Базовые блоки
	block.Register(block.AirBlockID, &AirBehavior{})
	block.Register(block.StoneBlockID, &StoneBehavior{})
	block.Register(block.UnstableRockBlockID, &UnstableRockBehavior{})
	block.Register(block.BedrockBlockID, &BedrockBehavior{})
	block.Register(block.DirtBlockID, &DirtBehavior{})

	// Крепь
	block.Register(block.TimberSupportBlockID, NewSupportBehavior(block.TimberSupportBlockID, "Timber Support", 3))
	block.Register(block.StonePillarBlockID, NewSupportBehavior(block.StonePillarBlockID, "Stone Pillar", 5))
}
