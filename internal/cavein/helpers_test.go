package cavein

import (
	"testing"
	"time"

	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/schedule"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	_ "github.com/annel0/mmo-cavein/internal/world/block/implementations"
	"github.com/annel0/mmo-cavein/internal/world/entity"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// stubRand возвращает фиксированные значения
type stubRand struct {
	f    float64
	intn func(n int) int
}

func (r *stubRand) Float64() float64 { return r.f }

func (r *stubRand) Intn(n int) int {
	if r.intn == nil {
		return 0
	}
	return r.intn(n)
}

// maxIntn даёт наибольшие пределы сбора
func maxIntn(n int) int { return n - 1 }

// midIntn даёт нулевой разброс повторных проверок
func midIntn(n int) int { return n / 2 }

// recordingSpawner запоминает порядок создания падающих блоков
type recordingSpawner struct {
	spawned []entity.FallingBlockSpec
	falling map[vec.Vec3]bool
}

func newRecordingSpawner() *recordingSpawner {
	return &recordingSpawner{falling: make(map[vec.Vec3]bool)}
}

func (r *recordingSpawner) SpawnFallingBlock(spec entity.FallingBlockSpec) uint64 {
	r.spawned = append(r.spawned, spec)
	r.falling[spec.Origin] = true
	return uint64(len(r.spawned))
}

func (r *recordingSpawner) HasFallingBlockAt(pos vec.Vec3) bool { return r.falling[pos] }

// noopTasks отбрасывает отложенные задачи
type noopTasks struct{ count int }

func (n *noopTasks) After(time.Duration, func()) { n.count++ }

type harness struct {
	sys     *System
	world   *world.World
	spawner *recordingSpawner
	tasks   *schedule.Scheduler
	metrics *Metrics
}

func newHarness(t *testing.T, cfg Config, r Rand) *harness {
	t.Helper()

	w := world.NewWorld(nil)
	w.SetLogger(logging.Discard())
	h := &harness{
		world:   w,
		spawner: newRecordingSpawner(),
		tasks:   schedule.NewScheduler(),
		metrics: NewMetrics(prometheus.NewRegistry()),
	}

	sys, err := New(cfg, Options{
		World:   w,
		Falling: h.spawner,
		Tasks:   h.tasks,
		Rand:    r,
		Metrics: h.metrics,
		Logger:  logging.Discard(),
	})
	require.NoError(t, err)
	h.sys = sys
	return h
}

func p(x, y, z int) vec.Vec3 { return vec.Vec3{X: x, Y: y, Z: z} }
