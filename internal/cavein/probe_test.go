package cavein

import (
	"math"
	"testing"

	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/stretchr/testify/assert"
)

func TestVerticalSupportStrength(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{})
	w := h.world

	// Сплошная колонна из четырёх блоков
	w.FillBox(p(0, 46, 0), p(0, 49, 0), block.StoneBlockID)
	w.SetBlock(p(0, 50, 0), block.UnstableRockBlockID)
	assert.Equal(t, 1, h.sys.VerticalSupportStrength(p(0, 50, 0)))

	// Воздух прямо под блоком
	w.SetBlock(p(5, 50, 0), block.UnstableRockBlockID)
	assert.Equal(t, 0, h.sys.VerticalSupportStrength(p(5, 50, 0)))

	// Разрыв на третьем слое
	w.FillBox(p(10, 48, 0), p(10, 49, 0), block.StoneBlockID)
	assert.Equal(t, 0, h.sys.VerticalSupportStrength(p(10, 50, 0)))

	// Явный рейтинг на втором слое возвращается сразу
	w.SetBlock(p(15, 48, 0), block.TimberSupportBlockID)
	w.SetBlock(p(15, 49, 0), block.UnstableRockBlockID)
	assert.Equal(t, 3, h.sys.VerticalSupportStrength(p(15, 50, 0)))

	// Стойка не имеет боковых граней, но верх и низ сплошные
	w.SetBlock(p(20, 49, 0), block.StonePillarBlockID)
	assert.Equal(t, 5, h.sys.VerticalSupportStrength(p(20, 50, 0)))
}

func TestVerticalSupportStrength_WorldFloor(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{})
	w := h.world

	w.SetBlock(p(0, 0, 0), block.UnstableRockBlockID)
	assert.Equal(t, 1, h.sys.VerticalSupportStrength(p(0, 0, 0)))

	w.SetBlock(p(1, 0, 0), block.BedrockBlockID)
	w.SetBlock(p(1, 1, 0), block.StoneBlockID)
	assert.Equal(t, 1, h.sys.VerticalSupportStrength(p(1, 2, 0)))

	assert.Equal(t, 0, h.sys.VerticalSupportStrength(p(2, 2, 0)))
}

func TestFindNearestVerticalSupport_SupportedStart(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{})
	h.world.FillBox(p(0, 45, 0), p(0, 49, 0), block.StoneBlockID)
	h.world.SetBlock(p(0, 50, 0), block.UnstableRockBlockID)

	res := h.sys.FindNearestVerticalSupport(p(0, 50, 0))
	assert.False(t, res.Unconnected)
	if assert.Len(t, res.Candidates, 1) {
		assert.Equal(t, p(0, 50, 0), res.Candidates[0].Pos)
		assert.Equal(t, 1, res.Candidates[0].Strength)
		assert.Zero(t, res.Candidates[0].DistanceSq)
	}

	eval := h.sys.Evaluate(p(0, 50, 0))
	assert.Zero(t, eval.NearestSupportDistance)
	assert.Zero(t, eval.Instability)
}

func TestFindNearestVerticalSupport_FloatingVoxel(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{})
	h.world.SetBlock(p(0, 50, 0), block.UnstableRockBlockID)

	res := h.sys.Evaluate(p(0, 50, 0))
	assert.True(t, res.Unconnected)
	assert.Empty(t, res.Candidates)
	assert.True(t, math.IsInf(res.NearestSupportDistance, 1))
	assert.Equal(t, maxInstability, res.Instability)
}

// beam строит горизонтальную балку породы длиной length от x=0
// с опорной колонной под дальним концом
func beam(h *harness, z, length int, support block.BlockID) {
	w := h.world
	w.FillBox(p(0, 50, z), p(length, 50, z), block.UnstableRockBlockID)
	if support == block.StoneBlockID {
		w.FillBox(p(length, 46, z), p(length, 49, z), block.StoneBlockID)
		return
	}
	w.SetBlock(p(length, 49, z), support)
}

func TestFindNearestVerticalSupport_ReachableSupport(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{})
	beam(h, 0, 4, block.StoneBlockID)

	res := h.sys.Evaluate(p(0, 50, 0))
	assert.False(t, res.Unconnected)
	if assert.Len(t, res.Candidates, 1) {
		assert.Equal(t, p(4, 50, 0), res.Candidates[0].Pos)
		assert.Equal(t, 16, res.Candidates[0].DistanceSq)
	}
	assert.InDelta(t, 4.0, res.NearestSupportDistance, 1e-9)
	assert.InDelta(t, 2.0, res.Instability, 1e-9)

	// Рейтинг опоры продлевает её дальность
	beam(h, 10, 4, block.TimberSupportBlockID)
	res = h.sys.Evaluate(p(0, 50, 10))
	assert.InDelta(t, math.Sqrt(14), res.NearestSupportDistance, 1e-9)
}

func TestFindNearestVerticalSupport_NeverUnconnectedWithSupportInRange(t *testing.T) {
	// Опора на каждом расстоянии в радиусе поиска
	for length := 1; length <= 6; length++ {
		h := newHarness(t, DefaultConfig(), &stubRand{})
		beam(h, 0, length, block.StoneBlockID)

		res := h.sys.FindNearestVerticalSupport(p(0, 50, 0))
		assert.False(t, res.Unconnected, "length=%d", length)
		assert.NotEmpty(t, res.Candidates, "length=%d", length)
	}
}

func TestFindNearestVerticalSupport_BeyondRadius(t *testing.T) {
	// Опора за пределом радиуса не находится, но край сети — выход
	h := newHarness(t, DefaultConfig(), &stubRand{})
	beam(h, 0, 9, block.StoneBlockID)

	res := h.sys.FindNearestVerticalSupport(p(0, 50, 0))
	assert.Empty(t, res.Candidates)
	assert.False(t, res.Unconnected)
}

func TestFindNearestVerticalSupport_GateNeedsBothFaces(t *testing.T) {
	// Стойка с боковыми гранями не продолжает горизонтальную сеть
	h := newHarness(t, DefaultConfig(), &stubRand{})
	w := h.world
	w.SetBlock(p(0, 50, 0), block.UnstableRockBlockID)
	w.SetBlock(p(1, 50, 0), block.TimberSupportBlockID)
	w.SetBlock(p(2, 50, 0), block.UnstableRockBlockID)
	w.FillBox(p(2, 46, 0), p(2, 49, 0), block.StoneBlockID)

	res := h.sys.FindNearestVerticalSupport(p(0, 50, 0))
	assert.True(t, res.Unconnected)
}
