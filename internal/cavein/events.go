package cavein

import "github.com/annel0/mmo-cavein/internal/vec"

// OnBlockBroken проверяет соседей разрушенного блока на обвал
func (s *System) OnBlockBroken(pos vec.Vec3) bool {
	return s.checkNeighbours(pos, TriggerBroken, nil)
}

// OnBlockExploded проверяет соседей блока, уничтоженного взрывом с центром center
func (s *System) OnBlockExploded(pos, center vec.Vec3) bool {
	c := center
	return s.checkNeighbours(pos, TriggerExploded, &c)
}

// checkNeighbours перебирает шесть соседей в случайном порядке и проверяет
// не более трёх из неустойчивой породы; останавливается на первом обвале.
func (s *System) checkNeighbours(pos vec.Vec3, trigger Trigger, center *vec.Vec3) bool {
	faces := vec.AllFaces()
	for i := len(faces) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		faces[i], faces[j] = faces[j], faces[i]
	}

	checks := 0
	for _, face := range faces {
		if checks >= maxNeighbourChecks {
			break
		}
		neighbour := pos.Side(face)
		if !s.isUnstableRock(neighbour) {
			continue
		}
		checks++
		if s.tryCollapse(neighbour, trigger, center) {
			return true
		}
	}
	return false
}
