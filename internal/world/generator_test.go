package world

import (
	"testing"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/stretchr/testify/assert"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(12345).GenerateChunk(vec.Vec3{X: 1, Y: 3, Z: -2})
	b := NewGenerator(12345).GenerateChunk(vec.Vec3{X: 1, Y: 3, Z: -2})

	assert.Equal(t, a.Snapshot(), b.Snapshot(), "одинаковый сид должен давать одинаковый чанк")
	assert.False(t, a.IsDirty(), "сгенерированный чанк не требует сохранения")
}

func TestGenerator_Layers(t *testing.T) {
	g := NewGenerator(7)
	w := NewWorld(g)

	for x := 0; x < 8; x++ {
		pos := vec.Vec3{X: x, Y: MinY, Z: 0}
		assert.Equal(t, block.BedrockBlockID, w.GetBlock(pos), "дно мира — коренная порода")

		surface := g.SurfaceHeight(x, 0)
		assert.Equal(t, block.AirBlockID, w.GetBlock(vec.Vec3{X: x, Y: surface + 1, Z: 0}))
		assert.Equal(t, block.DirtBlockID, w.GetBlock(vec.Vec3{X: x, Y: surface, Z: 0}))
	}
}

func TestGenerator_ProducesUnstableRock(t *testing.T) {
	g := NewGenerator(99)
	found := false
	for cx := 0; cx < 4 && !found; cx++ {
		for cy := 0; cy < 3 && !found; cy++ {
			for _, id := range g.GenerateChunk(vec.Vec3{X: cx, Y: cy, Z: 0}).Snapshot() {
				if id == block.UnstableRockBlockID {
					found = true
					break
				}
			}
		}
	}
	assert.True(t, found, "в толще камня должны встречаться карманы неустойчивой породы")
}
