package cavein

import (
	"context"

	"github.com/annel0/mmo-cavein/internal/vec"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Направления сбора обвала: по горизонтали и вверх
var gatherFaces = [5]vec.Facing{vec.FaceNorth, vec.FaceEast, vec.FaceSouth, vec.FaceWest, vec.FaceUp}

// TryCollapse решает, обрушится ли неустойчивая порода в pos, и при обвале
// передаёт собранные клетки в Execute. Возвращает true, если обвал начался.
func (s *System) TryCollapse(pos vec.Vec3) bool {
	return s.tryCollapse(pos, TriggerDirect, nil)
}

func (s *System) tryCollapse(pos vec.Vec3, trigger Trigger, center *vec.Vec3) bool {
	if !s.cfg.CaveInsEnabled || !s.cfg.AllowFallingBlocks {
		s.metrics.suppress("disabled")
		return false
	}
	if !s.cfg.Authoritative {
		s.metrics.suppress("replica")
		return false
	}
	if !s.isUnstableRock(pos) {
		return false
	}

	res := s.Evaluate(pos)
	cause := CauseUnconnected
	if !res.Unconnected {
		// Обе проверки должны пройти, иначе обвала нет
		if s.rng.Float64() > res.Instability+instabilityEpsilon {
			s.metrics.suppress("stable")
			return false
		}
		if s.rng.Float64() > s.cfg.CollapseChance {
			s.metrics.suppress("chance")
			return false
		}
		cause = CauseUnstable
	}

	_, span := s.tracer.Start(context.Background(), "cavein.collapse", trace.WithAttributes(
		attribute.String("cavein.trigger", string(trigger)),
		attribute.String("cavein.cause", string(cause)),
		attribute.Float64("cavein.instability", res.Instability),
	))
	defer span.End()

	gathered := s.gather(pos, res.Candidates)
	if len(gathered.Positions) == 0 {
		return false
	}
	span.SetAttributes(attribute.Int("cavein.blocks", len(gathered.Positions)))

	layers := s.Execute(gathered.Positions, pos)
	s.metrics.collapse(cause, gathered.Visited)

	s.log.Debug("Обвал в %v: %d блоков, %d слоёв, причина=%s, триггер=%s, нестабильность=%.2f",
		pos, len(gathered.Positions), layers, cause, trigger, res.Instability)

	s.publish(CollapseEvent{
		Pos:             pos,
		Trigger:         trigger,
		Cause:           cause,
		Count:           len(gathered.Positions),
		Layers:          layers,
		Instability:     res.Instability,
		ExplosionCenter: center,
	})
	return true
}

// Gather собирает клетки, которые обрушатся вместе с start, не трогая мир.
func (s *System) Gather(start vec.Vec3) GatherResult {
	if !s.isUnstableRock(start) {
		return GatherResult{}
	}
	res := s.FindNearestVerticalSupport(start)
	return s.gather(start, res.Candidates)
}

// gather: заливка от start по неустойчивой породе: горизонтально в пределах
// gatherMaxHorizontalSq и вверх не выше случайного предела. Берутся только
// клетки, ещё не покрытые найденными опорами. Поиск прерывается сразу по
// достижении случайного предела числа клеток.
func (s *System) gather(start vec.Vec3, candidates []SupportCandidate) GatherResult {
	maxDepth := 1 + s.rng.Intn(3)
	limit := 2 + s.rng.Intn(30) + s.rng.Intn(11)*s.rng.Intn(11)

	out := GatherResult{Cap: limit, MaxDepth: maxDepth}

	inSet := map[uint64]struct{}{start.Key(): {}}
	visited := map[uint64]struct{}{start.Key(): {}}
	out.Positions = append(out.Positions, start)

	add := func(p vec.Vec3) bool {
		if _, ok := inSet[p.Key()]; ok {
			return len(out.Positions) < limit
		}
		inSet[p.Key()] = struct{}{}
		out.Positions = append(out.Positions, p)
		return len(out.Positions) < limit
	}

	// Неподпёртые блоки под клеткой обвала падают вместе с ней
	walkDown := func(p vec.Vec3) bool {
		for i := 1; i <= gatherWalkDown; i++ {
			below := p.Down(i)
			if !s.isUnstableRock(below) || s.VerticalSupportStrength(below) != 0 {
				continue
			}
			if !add(below) {
				return false
			}
		}
		return true
	}

	if len(out.Positions) >= limit || !walkDown(start) {
		out.Visited = len(visited)
		return out
	}

	queue := []vec.Vec3{start}
	for head := 0; head < len(queue) && len(out.Positions) < limit; head++ {
		cur := queue[head]

		for _, face := range gatherFaces {
			next := cur.Side(face)
			key := next.Key()
			if _, seen := visited[key]; seen {
				continue
			}
			visited[key] = struct{}{}

			if next.HorizontalDistanceSq(start) > gatherMaxHorizontalSq || next.Y-start.Y > maxDepth {
				continue
			}
			if !s.isUnstableRock(next) {
				continue
			}
			if supportDistance(next, candidates) <= 0 {
				continue
			}

			if !add(next) || !walkDown(next) {
				out.Visited = len(visited)
				return out
			}
			queue = append(queue, next)
		}
	}

	out.Visited = len(visited)
	return out
}
