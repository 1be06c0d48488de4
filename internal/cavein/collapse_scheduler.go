package cavein

import (
	"sort"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/annel0/mmo-cavein/internal/world/entity"
)

// Execute превращает набор клеток в падающие блоки слой за слоем снизу вверх.
// Нижний слой обрабатывается сразу, каждый следующий через LayerDelay.
// После нижнего слоя планируются повторные проверки обвала рядом с trigger.
// Возвращает число слоёв.
func (s *System) Execute(set []vec.Vec3, trigger vec.Vec3) int {
	layers := groupByLayer(set)
	if len(layers) == 0 {
		return 0
	}

	s.runLayer(layers, 0)
	s.scheduleRetriggers(trigger)
	return len(layers)
}

func (s *System) runLayer(layers [][]vec.Vec3, idx int) {
	for _, pos := range layers[idx] {
		s.drop(pos)
	}
	if idx+1 < len(layers) {
		s.tasks.After(s.cfg.LayerDelay, func() { s.runLayer(layers, idx+1) })
	}
}

// drop создаёт падающий блок на месте pos и очищает клетку
func (s *System) drop(pos vec.Vec3) {
	if s.falling.HasFallingBlockAt(pos) {
		s.metrics.duplicate()
		s.log.Trace("Пропуск %v: блок уже падает", pos)
		return
	}

	id := s.world.GetBlock(pos)
	if !block.IsUnstable(id) {
		return
	}

	s.falling.SpawnFallingBlock(entity.FallingBlockSpec{
		Block:                  id,
		Origin:                 pos,
		FallSound:              block.FallSoundOf(id, s.cfg.FallSound),
		ImpactDamageMultiplier: s.cfg.ImpactDamageMultiplier,
		AllowSideways:          s.cfg.AllowSidewaysFall,
		DustIntensity:          s.cfg.DustIntensity,
	})
	s.world.SetBlock(pos, block.AirBlockID)
	s.metrics.spawn()
}

func (s *System) scheduleRetriggers(trigger vec.Vec3) {
	for i := 0; i < retriggerCount; i++ {
		target := trigger.Add(vec.Vec3{
			X: s.rng.Intn(2*retriggerJitter+1) - retriggerJitter,
			Z: s.rng.Intn(2*retriggerJitter+1) - retriggerJitter,
		})
		s.tasks.After(s.cfg.LayerDelay, func() {
			s.tryCollapse(target, TriggerCascade, nil)
		})
	}
}

// groupByLayer группирует клетки по Y в порядке возрастания
func groupByLayer(set []vec.Vec3) [][]vec.Vec3 {
	byY := make(map[int][]vec.Vec3)
	for _, pos := range set {
		byY[pos.Y] = append(byY[pos.Y], pos)
	}

	ys := make([]int, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	sort.Ints(ys)

	layers := make([][]vec.Vec3, 0, len(ys))
	for _, y := range ys {
		layers = append(layers, byY[y])
	}
	return layers
}
