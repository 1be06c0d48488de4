package cavein

import "github.com/annel0/mmo-cavein/internal/vec"

// FindNearestVerticalSupport ищет в ширину по горизонтальной сети блоков
// ближайшие вертикальные опоры. Сосед проходим, только если сплошные обе его
// грани вдоль направления обхода. Клетки дальше MaxSupportSearchDistanceSq
// не раскрываются; такая клетка со сплошным низом считается выходом из сети.
func (s *System) FindNearestVerticalSupport(start vec.Vec3) SearchResult {
	if strength := s.VerticalSupportStrength(start); strength > 0 {
		return SearchResult{
			Candidates: []SupportCandidate{{Pos: start, Strength: strength}},
			Visited:    1,
		}
	}

	var (
		candidates []SupportCandidate
		escaped    bool
	)

	visited := map[uint64]struct{}{start.Key(): {}}
	queue := []vec.Vec3{start}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]

		for _, face := range vec.Horizontals() {
			next := cur.Side(face)
			key := next.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			if !s.world.IsSideSolid(next, face) || !s.world.IsSideSolid(next, face.Opposite()) {
				continue
			}
			visited[key] = struct{}{}

			distSq := next.HorizontalDistanceSq(start)
			if distSq > s.cfg.MaxSupportSearchDistanceSq {
				if s.world.IsSideSolid(next, vec.FaceDown) {
					escaped = true
				}
				continue
			}

			if strength := s.VerticalSupportStrength(next); strength > 0 {
				candidates = append(candidates, SupportCandidate{Pos: next, Strength: strength, DistanceSq: distSq})
				continue
			}
			queue = append(queue, next)
		}
	}

	return SearchResult{
		Candidates:  candidates,
		Unconnected: len(candidates) == 0 && !escaped,
		Visited:     len(visited),
	}
}
