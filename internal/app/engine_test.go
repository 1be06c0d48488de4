package app

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/eventbus"
	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
	_ "github.com/annel0/mmo-cavein/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStorage struct {
	mu    sync.Mutex
	calls int
}

func (s *countingStorage) SaveDirty(w *world.World) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return len(w.DirtyChunks()), nil
}

func (s *countingStorage) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	w := world.NewWorld(nil)
	w.SetLogger(logging.Discard())
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(7))
	}
	e, err := NewEngine(w, cavein.DefaultConfig(), opts)
	require.NoError(t, err)
	return e
}

func v(x, y, z int) vec.Vec3 { return vec.Vec3{X: x, Y: y, Z: z} }

func TestNewEngine_RequiresWorld(t *testing.T) {
	_, err := NewEngine(nil, cavein.DefaultConfig(), Options{})
	assert.Error(t, err)
}

func TestEngine_ExecRunsOnNextStep(t *testing.T) {
	e := newTestEngine(t, Options{})

	ran := false
	done := e.Exec(func() { ran = true })

	select {
	case <-done:
		t.Fatal("транзакция не должна выполняться до тика")
	default:
	}

	e.Step(50 * time.Millisecond)
	<-done
	assert.True(t, ran)
	assert.Equal(t, uint64(1), e.Stats().Ticks)
}

func TestEngine_ExecWaitCancelled(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.ExecWait(ctx, func() {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_BreakAir(t *testing.T) {
	e := newTestEngine(t, Options{})
	res := e.BreakBlock(v(0, 10, 0))
	assert.False(t, res.Broken)
	assert.False(t, res.Collapsed)
}

func TestEngine_BreakBlockDropsHangingRock(t *testing.T) {
	bus := eventbus.NewMemoryBus(64)
	defer bus.Close()

	var mu sync.Mutex
	seen := make(map[string]int)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		seen[ev.EventType]++
		mu.Unlock()
	})
	require.NoError(t, err)

	e := newTestEngine(t, Options{Bus: bus})
	w := e.World()
	w.FillBox(v(-2, 0, -2), v(2, 0, 2), block.StoneBlockID)
	w.SetBlock(v(0, 10, 0), block.StoneBlockID)
	w.SetBlock(v(0, 11, 0), block.UnstableRockBlockID)

	res := e.BreakBlock(v(0, 10, 0))
	assert.True(t, res.Broken)
	assert.Equal(t, block.StoneBlockID, res.Block)
	assert.True(t, res.Collapsed)
	assert.Equal(t, block.AirBlockID, w.GetBlock(v(0, 11, 0)))
	assert.Equal(t, 1, e.Falling().Count())

	for i := 0; i < 200 && e.Falling().Count() > 0; i++ {
		e.Step(50 * time.Millisecond)
	}
	require.Zero(t, e.Falling().Count())
	assert.Equal(t, block.UnstableRockBlockID, w.GetBlock(v(0, 1, 0)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[eventbus.EventBlockBroken] == 1 &&
			seen[eventbus.EventCollapse] >= 1 &&
			seen[eventbus.EventBlockLanded] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_ExplodeSparesBedrock(t *testing.T) {
	e := newTestEngine(t, Options{})
	w := e.World()
	w.FillBox(v(-3, 0, -3), v(3, 0, 3), block.BedrockBlockID)
	w.FillBox(v(-3, 1, -3), v(3, 6, 3), block.StoneBlockID)

	res, err := e.Explode(v(0, 3, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Destroyed)
	assert.Equal(t, block.AirBlockID, w.GetBlock(v(0, 3, 0)))
	assert.Equal(t, block.AirBlockID, w.GetBlock(v(1, 3, 0)))
	assert.Equal(t, block.StoneBlockID, w.GetBlock(v(1, 4, 0)))

	res, err = e.Explode(v(0, 0, 0), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Destroyed, "только камень над коренной породой")
	assert.Equal(t, block.BedrockBlockID, w.GetBlock(v(0, 0, 0)))
}

func TestEngine_ExplodeRejectsRadius(t *testing.T) {
	e := newTestEngine(t, Options{})
	_, err := e.Explode(v(0, 5, 0), -1)
	assert.ErrorIs(t, err, ErrInvalidRadius)
	_, err = e.Explode(v(0, 5, 0), maxExplodeRadius+1)
	assert.ErrorIs(t, err, ErrInvalidRadius)
}

func TestEngine_Autosave(t *testing.T) {
	st := &countingStorage{}
	e := newTestEngine(t, Options{Storage: st, AutosaveInterval: 100 * time.Millisecond})

	e.Step(50 * time.Millisecond)
	assert.Equal(t, 0, st.Calls())
	e.Step(50 * time.Millisecond)
	assert.Equal(t, 1, st.Calls())
}

func TestEngine_RunStopsAndSaves(t *testing.T) {
	st := &countingStorage{}
	e := newTestEngine(t, Options{Storage: st, TickInterval: 5 * time.Millisecond})
	e.World().SetBlock(v(0, 5, 0), block.StoneBlockID)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- e.Run(ctx) }()

	var res BreakResult
	require.NoError(t, e.ExecWait(context.Background(), func() { res = e.BreakBlock(v(0, 5, 0)) }))
	assert.True(t, res.Broken)
	assert.True(t, e.Stats().Running)

	cancel()
	select {
	case err := <-stopped:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("движок не остановился")
	}
	assert.Equal(t, 1, st.Calls())
	assert.Zero(t, e.Stats().PendingTasks)
	assert.False(t, e.Stats().Running)
}
