package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/schedule"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/annel0/mmo-cavein/internal/world/entity"
)

// Высота, на которой строятся сценарии
const scenarioY = 100

// sandbox: изолированный мир с системой обвалов для одного прогона
type sandbox struct {
	world   *world.World
	falling *entity.FallingBlockManager
	tasks   *schedule.Scheduler
	sys     *cavein.System
}

func newSandbox(cfg cavein.Config, rng cavein.Rand) (*sandbox, error) {
	w := world.NewWorld(nil)
	w.SetLogger(logging.Discard())

	sb := &sandbox{
		world:   w,
		falling: entity.NewFallingBlockManager(w),
		tasks:   schedule.NewScheduler(),
	}
	sys, err := cavein.New(cfg, cavein.Options{
		World:   w,
		Falling: sb.falling,
		Tasks:   sb.tasks,
		Rand:    rng,
		Logger:  logging.Discard(),
	})
	if err != nil {
		return nil, err
	}
	sb.sys = sys
	return sb, nil
}

// buildBridge ставит неустойчивый блок в (0, y, 0), цепочку камня до x=distance
// и опору с рейтингом 1 (каменный столб) под x=distance.
func buildBridge(w *world.World, distance int) vec.Vec3 {
	target := vec.Vec3{X: 0, Y: scenarioY, Z: 0}
	w.SetBlock(target, block.UnstableRockBlockID)
	for x := 1; x <= distance; x++ {
		w.SetBlock(vec.Vec3{X: x, Y: scenarioY, Z: 0}, block.StoneBlockID)
	}
	w.FillBox(vec.Vec3{X: distance, Y: scenarioY - 4, Z: 0}, vec.Vec3{X: distance, Y: scenarioY - 1, Z: 0}, block.StoneBlockID)
	return target
}

// TrialsReport: итог серии бросков
type TrialsReport struct {
	Distance    int
	Trials      int
	Collapses   int
	Instability float64
	Expected    float64
}

// Observed возвращает наблюдаемую частоту обвалов
func (r TrialsReport) Observed() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Collapses) / float64(r.Trials)
}

// runTrials повторяет TryCollapse для блока на расстоянии distance от опоры
func runTrials(cfg cavein.Config, distance, trials int, seed int64) (TrialsReport, error) {
	if distance < 1 {
		return TrialsReport{}, fmt.Errorf("distance must be >= 1, got %d", distance)
	}
	rng := rand.New(rand.NewSource(seed))
	report := TrialsReport{Distance: distance, Trials: trials}

	for i := 0; i < trials; i++ {
		sb, err := newSandbox(cfg, rng)
		if err != nil {
			return report, err
		}
		target := buildBridge(sb.world, distance)
		if i == 0 {
			res := sb.sys.Evaluate(target)
			report.Instability = res.Instability
			if res.Unconnected {
				report.Expected = 1
			} else {
				report.Expected = min(1, res.Instability+0.001) * cfg.CollapseChance
			}
		}
		if sb.sys.TryCollapse(target) {
			report.Collapses++
		}
	}
	return report, nil
}

// PlaneReport: итог сбора обвала в большой плите
type PlaneReport struct {
	Size       int
	Evaluation cavein.SearchResult
	Gather     cavein.GatherResult
	Elapsed    time.Duration
}

// runPlane строит плиту size x size неустойчивой породы без опор и
// собирает обвал из её центра, не меняя мир.
func runPlane(cfg cavein.Config, size int, seed int64) (PlaneReport, error) {
	if size < 1 {
		return PlaneReport{}, fmt.Errorf("size must be >= 1, got %d", size)
	}
	sb, err := newSandbox(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return PlaneReport{}, err
	}

	half := size / 2
	sb.world.FillBox(
		vec.Vec3{X: -half, Y: scenarioY, Z: -half},
		vec.Vec3{X: size - half - 1, Y: scenarioY, Z: size - half - 1},
		block.UnstableRockBlockID,
	)
	center := vec.Vec3{X: 0, Y: scenarioY, Z: 0}

	start := time.Now()
	report := PlaneReport{Size: size}
	report.Evaluation = sb.sys.Evaluate(center)
	report.Gather = sb.sys.Gather(center)
	report.Elapsed = time.Since(start)
	return report, nil
}

// ColumnRow: оценка одной клетки колонны
type ColumnRow struct {
	Pos         vec.Vec3
	Strength    int
	Unconnected bool
	Instability float64
}

// supportBlocks: блоки, которые можно поставить под колонну
var supportBlocks = map[string]block.BlockID{
	"stone":  block.StoneBlockID,
	"timber": block.TimberSupportBlockID,
	"pillar": block.StonePillarBlockID,
}

// runColumn ставит опору support под колонну неустойчивой породы высотой
// height и оценивает каждую клетку колонны снизу вверх.
func runColumn(cfg cavein.Config, support string, height int) ([]ColumnRow, error) {
	id, ok := supportBlocks[support]
	if !ok {
		return nil, fmt.Errorf("unknown support %q", support)
	}
	if height < 1 {
		return nil, fmt.Errorf("height must be >= 1, got %d", height)
	}
	sb, err := newSandbox(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		return nil, err
	}

	base := vec.Vec3{X: 0, Y: scenarioY, Z: 0}
	sb.world.FillBox(base.Down(5), base.Down(2), block.StoneBlockID)
	sb.world.SetBlock(base.Down(1), id)
	sb.world.FillBox(base, base.Up(height-1), block.UnstableRockBlockID)

	rows := make([]ColumnRow, 0, height)
	for i := 0; i < height; i++ {
		pos := base.Up(i)
		res := sb.sys.Evaluate(pos)
		rows = append(rows, ColumnRow{
			Pos:         pos,
			Strength:    sb.sys.VerticalSupportStrength(pos),
			Unconnected: res.Unconnected,
			Instability: res.Instability,
		})
	}
	return rows, nil
}
