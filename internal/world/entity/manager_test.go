package entity

import (
	"testing"

	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
	_ "github.com/annel0/mmo-cavein/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rockSpec(origin vec.Vec3) FallingBlockSpec {
	return FallingBlockSpec{
		Block:                  block.UnstableRockBlockID,
		Origin:                 origin,
		FallSound:              "effect/rockslide",
		ImpactDamageMultiplier: 2.0,
		AllowSideways:          true,
		DustIntensity:          1.0,
	}
}

// tickUntilLanded гоняет симуляцию до приземления всех блоков
func tickUntilLanded(t *testing.T, m *FallingBlockManager) []LandEvent {
	t.Helper()
	var events []LandEvent
	for i := 0; i < 1000 && m.Count() > 0; i++ {
		events = append(events, m.Tick(0.05)...)
	}
	require.Zero(t, m.Count(), "все блоки должны приземлиться")
	return events
}

func TestFallingBlock_FallsAndLands(t *testing.T) {
	w := world.NewWorld(nil)
	w.FillBox(vec.Vec3{X: -2, Y: 0, Z: -2}, vec.Vec3{X: 2, Y: 0, Z: 2}, block.StoneBlockID)

	m := NewFallingBlockManager(w)
	origin := vec.Vec3{X: 0, Y: 10, Z: 0}
	id := m.SpawnFallingBlock(rockSpec(origin))

	assert.True(t, m.HasFallingBlockAt(origin))
	fb, ok := m.Get(id)
	require.True(t, ok)
	assert.Equal(t, EntityTypeFallingBlock, fb.Type)

	var received []LandEvent
	m.OnLand(func(ev LandEvent) { received = append(received, ev) })

	events := tickUntilLanded(t, m)
	require.Len(t, events, 1)
	ev := events[0]

	assert.Equal(t, vec.Vec3{X: 0, Y: 1, Z: 0}, ev.Pos)
	assert.Equal(t, 9, ev.FallDistance)
	assert.InDelta(t, 18.0, ev.ImpactDamage, 1e-9)
	assert.False(t, ev.Dropped)
	assert.Equal(t, block.UnstableRockBlockID, w.GetBlock(ev.Pos))
	assert.False(t, m.HasFallingBlockAt(origin))
	assert.Equal(t, events, received)
}

func TestFallingBlock_SettlesInPlace(t *testing.T) {
	w := world.NewWorld(nil)
	origin := vec.Vec3{X: 0, Y: 5, Z: 0}
	w.SetBlock(origin.Down(1), block.StoneBlockID)

	m := NewFallingBlockManager(w)
	m.SpawnFallingBlock(rockSpec(origin))

	events := tickUntilLanded(t, m)
	require.Len(t, events, 1)
	assert.Equal(t, origin, events[0].Pos)
	assert.Zero(t, events[0].FallDistance)
}

func TestFallingBlock_StacksInColumn(t *testing.T) {
	w := world.NewWorld(nil)
	w.SetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}, block.BedrockBlockID)

	m := NewFallingBlockManager(w)
	m.SpawnFallingBlock(rockSpec(vec.Vec3{X: 0, Y: 6, Z: 0}))
	m.SpawnFallingBlock(rockSpec(vec.Vec3{X: 0, Y: 7, Z: 0}))

	tickUntilLanded(t, m)
	assert.Equal(t, block.UnstableRockBlockID, w.GetBlock(vec.Vec3{X: 0, Y: 1, Z: 0}))
	assert.Equal(t, block.UnstableRockBlockID, w.GetBlock(vec.Vec3{X: 0, Y: 2, Z: 0}))
}

func TestFallingBlock_SidewaysAndDropped(t *testing.T) {
	// Клетку посадки заняли после появления сущности
	w := world.NewWorld(nil)
	origin := vec.Vec3{X: 0, Y: 3, Z: 0}
	w.SetBlock(origin.Down(1), block.StoneBlockID)

	m := NewFallingBlockManager(w)
	m.SpawnFallingBlock(rockSpec(origin))
	w.SetBlock(origin, block.StoneBlockID)

	events := tickUntilLanded(t, m)
	require.Len(t, events, 1)
	assert.False(t, events[0].Dropped)
	assert.NotEqual(t, origin, events[0].Pos, "блок должен соскользнуть вбок")
	assert.Equal(t, block.UnstableRockBlockID, w.GetBlock(events[0].Pos))

	// Без права соскальзывать блок разрушается
	spec := rockSpec(origin)
	spec.AllowSideways = false
	m.SpawnFallingBlock(spec)
	events = tickUntilLanded(t, m)
	require.Len(t, events, 1)
	assert.True(t, events[0].Dropped)
}

func TestFallingBlock_FloorClamp(t *testing.T) {
	// Пустой мир: блок останавливается на дне (y=MinY)
	w := world.NewWorld(nil)
	m := NewFallingBlockManager(w)
	m.SpawnFallingBlock(rockSpec(vec.Vec3{X: 4, Y: 3, Z: 4}))

	events := tickUntilLanded(t, m)
	require.Len(t, events, 1)
	assert.Equal(t, world.MinY, events[0].Pos.Y)
}
