package cavein

import (
	"testing"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnedYs(r *recordingSpawner) []int {
	ys := make([]int, 0, len(r.spawned))
	for _, spec := range r.spawned {
		ys = append(ys, spec.Origin.Y)
	}
	return ys
}

func TestExecute_LayersAscendWithDelay(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg, &stubRand{intn: midIntn})

	set := []vec.Vec3{p(0, 12, 0), p(0, 10, 0), p(1, 11, 0), p(0, 11, 0), p(1, 10, 0)}
	for _, pos := range set {
		h.world.SetBlock(pos, block.UnstableRockBlockID)
	}

	layers := h.sys.Execute(set, p(0, 10, 0))
	assert.Equal(t, 3, layers)

	// Нижний слой сразу, остальные ждут
	assert.Equal(t, []int{10, 10}, spawnedYs(h.spawner))
	assert.Equal(t, block.UnstableRockBlockID, h.world.GetBlock(p(0, 11, 0)))

	h.tasks.Advance(cfg.LayerDelay / 2)
	assert.Len(t, h.spawner.spawned, 2)

	h.tasks.Advance(cfg.LayerDelay / 2)
	assert.Equal(t, []int{10, 10, 11, 11}, spawnedYs(h.spawner))

	h.tasks.Advance(cfg.LayerDelay)
	assert.Equal(t, []int{10, 10, 11, 11, 12}, spawnedYs(h.spawner))
	assert.Zero(t, h.tasks.Pending())

	for _, pos := range set {
		assert.Equal(t, block.AirBlockID, h.world.GetBlock(pos))
	}
	assert.Equal(t, 5.0, testutil.ToFloat64(h.metrics.spawned))
}

func TestExecute_SkipsDuplicatesAndChangedCells(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{intn: midIntn})
	h.world.SetBlock(p(0, 10, 0), block.UnstableRockBlockID)
	h.world.SetBlock(p(1, 10, 0), block.UnstableRockBlockID)
	h.world.SetBlock(p(2, 10, 0), block.StoneBlockID)

	// Блок в (0,10,0) уже падает
	h.spawner.falling[p(0, 10, 0)] = true

	h.sys.Execute([]vec.Vec3{p(0, 10, 0), p(1, 10, 0), p(2, 10, 0)}, p(0, 10, 0))

	require.Len(t, h.spawner.spawned, 1)
	assert.Equal(t, p(1, 10, 0), h.spawner.spawned[0].Origin)
	assert.Equal(t, block.UnstableRockBlockID, h.world.GetBlock(p(0, 10, 0)))
	assert.Equal(t, block.StoneBlockID, h.world.GetBlock(p(2, 10, 0)))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.duplicates))

	// Повторный обвал того же места не создаёт второй блок
	h.sys.Execute([]vec.Vec3{p(1, 10, 0)}, p(1, 10, 0))
	assert.Len(t, h.spawner.spawned, 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(h.metrics.duplicates))
}

func TestExecute_RetriggersAfterDelay(t *testing.T) {
	// Разброс 0: повторная проверка попадает в точку обвала
	h := newHarness(t, DefaultConfig(), &stubRand{intn: midIntn})
	h.world.SetBlock(p(0, 10, 0), block.UnstableRockBlockID)

	h.sys.Execute([]vec.Vec3{p(0, 10, 0)}, p(0, 10, 0))
	assert.Equal(t, retriggerCount, h.tasks.Pending())

	// Порода вернулась на место до повторной проверки
	h.world.SetBlock(p(0, 10, 0), block.UnstableRockBlockID)
	delete(h.spawner.falling, p(0, 10, 0))

	h.tasks.Advance(DefaultConfig().LayerDelay)
	assert.Len(t, h.spawner.spawned, 2, "первая повторная проверка обрушила висящий блок")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.collapses.WithLabelValues(string(CauseUnconnected))))
}

func TestGroupByLayer(t *testing.T) {
	assert.Empty(t, groupByLayer(nil))

	layers := groupByLayer([]vec.Vec3{p(0, 5, 0), p(0, -1, 0), p(3, 5, 1)})
	require.Len(t, layers, 2)
	assert.Equal(t, []vec.Vec3{p(0, -1, 0)}, layers[0])
	assert.Equal(t, []vec.Vec3{p(0, 5, 0), p(3, 5, 1)}, layers[1])
}
