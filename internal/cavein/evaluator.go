package cavein

import (
	"math"

	"github.com/annel0/mmo-cavein/internal/vec"
)

// Evaluate дополняет результат поиска опоры расстоянием и нестабильностью.
// Итоговое расстояние — минимум из расстояния до опор и до балок крепи.
func (s *System) Evaluate(pos vec.Vec3) SearchResult {
	res := s.FindNearestVerticalSupport(pos)

	dist := supportDistance(pos, res.Candidates)
	if beam := s.beams(pos); !math.IsNaN(beam) && beam < dist {
		dist = beam
	}

	res.NearestSupportDistance = dist
	res.Instability = instabilityFor(dist, s.cfg.MaxSupportDistance)

	s.metrics.evaluation(res.Visited)
	return res
}

// supportDistance возвращает расстояние от pos до ближайшей опоры с учётом
// рейтинга: опора с рейтингом N дотягивается на N-1 дальше.
// Без опор — +Inf.
func supportDistance(pos vec.Vec3, candidates []SupportCandidate) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		reduced := pos.HorizontalDistanceSq(c.Pos) - (c.Strength - 1)
		if reduced < 0 {
			reduced = 0
		}
		if d := math.Sqrt(float64(reduced)); d < best {
			best = d
		}
	}
	return best
}

func instabilityFor(dist, maxSupportDistance float64) float64 {
	if maxSupportDistance <= 0 {
		return maxInstability
	}
	v := dist / maxSupportDistance
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > maxInstability:
		return maxInstability
	}
	return v
}
