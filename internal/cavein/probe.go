package cavein

import (
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
)

// VerticalSupportStrength оценивает вертикальную опору под pos.
// Просматривает до четырёх слоёв вниз: явный рейтинг крепи возвращается сразу,
// блок без сплошного верха или низа обрывает цепочку (0). Непрерывная
// сплошная колонна или дно мира дают 1.
func (s *System) VerticalSupportStrength(pos vec.Vec3) int {
	for i := 1; i <= supportProbeDepth; i++ {
		below := pos.Down(i)
		if below.Y < world.MinY {
			return 1
		}
		if rating := s.world.GetBlockStabilizationRating(below); rating > 0 {
			return rating
		}
		if !s.world.IsSideSolid(below, vec.FaceUp) || !s.world.IsSideSolid(below, vec.FaceDown) {
			return 0
		}
	}
	return 1
}

func (s *System) isUnstableRock(pos vec.Vec3) bool {
	return block.IsUnstable(s.world.GetBlock(pos))
}
