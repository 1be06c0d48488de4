package world

import (
	"testing"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/stretchr/testify/assert"
)

func TestChunkCoords_Negative(t *testing.T) {
	pos := vec.Vec3{X: -1, Y: 17, Z: -16}
	assert.Equal(t, vec.Vec3{X: -1, Y: 1, Z: -1}, ToChunkCoords(pos))
	assert.Equal(t, vec.Vec3{X: 15, Y: 1, Z: 0}, LocalInChunk(pos))
}

func TestChunk_SetGetAndCounters(t *testing.T) {
	c := NewChunk(vec.Vec3{X: 2, Y: 0, Z: -1})
	assert.Equal(t, vec.Vec3{X: 32, Y: 0, Z: -16}, c.Origin())
	assert.True(t, c.IsEmpty())

	local := vec.Vec3{X: 15, Y: 15, Z: 15}
	old := c.SetBlock(local, block.StoneBlockID)
	assert.Equal(t, block.AirBlockID, old)
	assert.Equal(t, block.StoneBlockID, c.GetBlock(local))
	assert.False(t, c.IsEmpty())
	assert.True(t, c.IsDirty())

	c.SetBlock(local, block.AirBlockID)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 2, c.ChangeCounter)
}

func TestChunk_FillAndSnapshot(t *testing.T) {
	c := NewChunk(vec.Vec3{})
	blocks := make([]block.BlockID, ChunkVolume)
	blocks[0] = block.BedrockBlockID
	blocks[ChunkVolume-1] = block.UnstableRockBlockID

	c.Fill(blocks)
	assert.False(t, c.IsDirty(), "Fill не должен помечать чанк изменённым")
	assert.Equal(t, block.UnstableRockBlockID, c.GetBlock(vec.Vec3{X: 15, Y: 15, Z: 15}))

	snap := c.Snapshot()
	snap[0] = block.AirBlockID
	assert.Equal(t, block.BedrockBlockID, c.GetBlock(vec.Vec3{}), "снимок должен быть копией")
}
