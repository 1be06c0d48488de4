package cavein

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/mmo-cavein/internal/eventbus"
	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnBlockBroken_CollapsesHangingNeighbour(t *testing.T) {
	h := newHarness(t, DefaultConfig(), &stubRand{intn: midIntn})
	h.world.SetBlock(p(0, 51, 0), block.UnstableRockBlockID)

	assert.True(t, h.sys.OnBlockBroken(p(0, 50, 0)))
	assert.Equal(t, block.AirBlockID, h.world.GetBlock(p(0, 51, 0)))
	require.Len(t, h.spawner.spawned, 1)
}

func TestOnBlockBroken_ChecksAtMostThreeNeighbours(t *testing.T) {
	// Пять устойчивых соседей: ни один не обрушится, проверок не больше трёх
	h := newHarness(t, DefaultConfig(), &stubRand{f: 0.5, intn: midIntn})
	w := h.world
	w.FillBox(p(-3, 40, -3), p(3, 51, 3), block.StoneBlockID)

	broken := p(0, 52, 0)
	for _, pos := range []struct{ x, y, z int }{{0, 51, 0}, {1, 52, 0}, {-1, 52, 0}, {0, 52, 1}, {0, 52, -1}} {
		w.SetBlock(p(pos.x, pos.y, pos.z), block.UnstableRockBlockID)
	}

	assert.False(t, h.sys.OnBlockBroken(broken))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.evaluations))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.suppressed.WithLabelValues("stable")))
	assert.Empty(t, h.spawner.spawned)
}

func TestOnBlockExploded_PublishesCollapse(t *testing.T) {
	bus := eventbus.NewMemoryBus(16)
	defer bus.Close()

	received := make(chan *eventbus.Envelope, 1)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.EventCollapse}}, func(ctx context.Context, ev *eventbus.Envelope) {
		received <- ev
	})
	require.NoError(t, err)

	h := newHarness(t, DefaultConfig(), &stubRand{intn: midIntn})
	sys, err := New(DefaultConfig(), Options{
		World:   h.world,
		Falling: h.spawner,
		Tasks:   h.tasks,
		Rand:    &stubRand{intn: midIntn},
		Bus:     bus,
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)

	h.world.SetBlock(p(0, 49, 0), block.UnstableRockBlockID)
	center := p(3, 50, 0)
	require.True(t, sys.OnBlockExploded(p(0, 50, 0), center))

	select {
	case env := <-received:
		var ev CollapseEvent
		require.NoError(t, env.Decode(&ev))
		assert.Equal(t, p(0, 49, 0), ev.Pos)
		assert.Equal(t, TriggerExploded, ev.Trigger)
		assert.Equal(t, CauseUnconnected, ev.Cause)
		assert.Equal(t, 1, ev.Count)
		assert.Equal(t, 1, ev.Layers)
		require.NotNil(t, ev.ExplosionCenter)
		assert.Equal(t, center, *ev.ExplosionCenter)
	case <-time.After(2 * time.Second):
		t.Fatal("событие обвала не опубликовано")
	}
}
