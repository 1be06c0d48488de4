package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/eventbus"
	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/schedule"
	"github.com/annel0/mmo-cavein/internal/vec"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
	"github.com/annel0/mmo-cavein/internal/world/entity"
)

const (
	engineSource      = "engine"
	execQueueSize     = 256
	maxExplodeRadius  = 8
	defaultTickPeriod = 50 * time.Millisecond
)

// ErrInvalidRadius возвращается для взрыва с недопустимым радиусом
var ErrInvalidRadius = errors.New("app: invalid explosion radius")

// Storage сохраняет изменённые чанки мира
type Storage interface {
	SaveDirty(w *world.World) (int, error)
}

// Options: необязательные зависимости движка
type Options struct {
	Storage          Storage           // nil — без автосохранения
	Bus              eventbus.EventBus // nil — события не публикуются
	Metrics          *cavein.Metrics
	Rand             cavein.Rand
	Logger           *logging.Logger
	TickInterval     time.Duration // 0 — 50 мс
	AutosaveInterval time.Duration // 0 — автосохранение выключено
}

// BreakResult: итог разрушения блока
type BreakResult struct {
	Broken    bool          `json:"broken"`
	Block     block.BlockID `json:"block"`
	Collapsed bool          `json:"collapsed"`
}

// ExplodeResult: итог взрыва
type ExplodeResult struct {
	Destroyed int `json:"destroyed"`
	Collapses int `json:"collapses"`
}

// Stats: состояние движка для мониторинга
type Stats struct {
	Ticks         uint64        `json:"ticks"`
	SimTime       time.Duration `json:"sim_time"`
	PendingTasks  int           `json:"pending_tasks"`
	FallingBlocks int           `json:"falling_blocks"`
	LoadedChunks  int           `json:"loaded_chunks"`
	Running       bool          `json:"running"`
}

type transaction struct {
	fn   func()
	done chan struct{}
}

// Engine владеет миром и выполняет всю симуляцию в одной горутине тика.
// Другие горутины передают изменения через Exec.
type Engine struct {
	world   *world.World
	falling *entity.FallingBlockManager
	tasks   *schedule.Scheduler
	core    *cavein.System
	storage Storage
	bus     eventbus.EventBus
	log     *logging.Logger

	tickInterval     time.Duration
	autosaveInterval time.Duration
	sinceSave        time.Duration

	queue   chan transaction
	ticks   atomic.Uint64
	running atomic.Bool
}

// NewEngine собирает движок вокруг мира w
func NewEngine(w *world.World, cfg cavein.Config, opts Options) (*Engine, error) {
	if w == nil {
		return nil, errors.New("app: world is required")
	}

	e := &Engine{
		world:            w,
		falling:          entity.NewFallingBlockManager(w),
		tasks:            schedule.NewScheduler(),
		storage:          opts.Storage,
		bus:              opts.Bus,
		log:              opts.Logger,
		tickInterval:     opts.TickInterval,
		autosaveInterval: opts.AutosaveInterval,
		queue:            make(chan transaction, execQueueSize),
	}
	if e.log == nil {
		e.log = logging.GetWorldLogger()
	}
	if e.tickInterval <= 0 {
		e.tickInterval = defaultTickPeriod
	}

	core, err := cavein.New(cfg, cavein.Options{
		World:   w,
		Falling: e.falling,
		Tasks:   e.tasks,
		Rand:    opts.Rand,
		Metrics: opts.Metrics,
		Bus:     opts.Bus,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать систему обвалов: %w", err)
	}
	e.core = core
	return e, nil
}

// World возвращает мир движка. Изменять его можно только из тика.
func (e *Engine) World() *world.World { return e.world }

// CaveIn возвращает систему обвалов
func (e *Engine) CaveIn() *cavein.System { return e.core }

// Falling возвращает менеджер падающих блоков
func (e *Engine) Falling() *entity.FallingBlockManager { return e.falling }

// Exec ставит fn в очередь тика. Возвращаемый канал закрывается,
// когда fn выполнена.
func (e *Engine) Exec(fn func()) <-chan struct{} {
	c := make(chan struct{})
	e.queue <- transaction{fn: fn, done: c}
	return c
}

// ExecWait выполняет fn в горутине тика и ждёт завершения
func (e *Engine) ExecWait(ctx context.Context, fn func()) error {
	c := make(chan struct{})
	select {
	case e.queue <- transaction{fn: fn, done: c}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) drainQueue() {
	for {
		select {
		case tx := <-e.queue:
			if tx.fn != nil {
				tx.fn()
			}
			close(tx.done)
		default:
			return
		}
	}
}

// Step выполняет один тик длительностью dt
func (e *Engine) Step(dt time.Duration) {
	e.drainQueue()
	e.tasks.Advance(dt)

	for _, ev := range e.falling.Tick(dt.Seconds()) {
		e.publish(eventbus.EventBlockLanded, ev, 3)
	}

	e.ticks.Add(1)
	if e.storage != nil && e.autosaveInterval > 0 {
		e.sinceSave += dt
		if e.sinceSave >= e.autosaveInterval {
			e.sinceSave = 0
			e.save()
		}
	}
}

// Run крутит тики до отмены ctx, затем сохраняет мир и сбрасывает
// отложенные задачи.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.New("app: engine already running")
	}
	defer e.running.Store(false)

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	e.log.Info("Движок запущен, тик %v", e.tickInterval)
	for {
		select {
		case <-ticker.C:
			e.Step(e.tickInterval)
		case <-ctx.Done():
			e.drainQueue()
			if e.storage != nil {
				e.save()
			}
			e.tasks.Clear()
			e.log.Info("Движок остановлен после %d тиков", e.ticks.Load())
			return nil
		}
	}
}

func (e *Engine) save() {
	n, err := e.storage.SaveDirty(e.world)
	if err != nil {
		e.log.Error("Ошибка автосохранения: %v", err)
		return
	}
	if n > 0 {
		e.log.Debug("Сохранено чанков: %d", n)
	}
}

type blockBrokenPayload struct {
	Pos   vec.Vec3      `json:"pos"`
	Block block.BlockID `json:"block"`
}

// BreakBlock разрушает блок в pos и проверяет соседей на обвал
func (e *Engine) BreakBlock(pos vec.Vec3) BreakResult {
	id := e.world.GetBlock(pos)
	if id == block.AirBlockID || !world.InBounds(pos) {
		return BreakResult{}
	}

	e.world.SetBlock(pos, block.AirBlockID)
	e.publish(eventbus.EventBlockBroken, blockBrokenPayload{Pos: pos, Block: id}, 4)

	return BreakResult{
		Broken:    true,
		Block:     id,
		Collapsed: e.core.OnBlockBroken(pos),
	}
}

type explosionPayload struct {
	Center    vec.Vec3 `json:"center"`
	Radius    int      `json:"radius"`
	Destroyed int      `json:"destroyed"`
}

// Explode уничтожает шар радиуса radius вокруг center (кроме коренной
// породы) и проверяет окрестность каждой уничтоженной клетки на обвал.
func (e *Engine) Explode(center vec.Vec3, radius int) (ExplodeResult, error) {
	if radius < 0 || radius > maxExplodeRadius {
		return ExplodeResult{}, fmt.Errorf("%w: %d", ErrInvalidRadius, radius)
	}

	var destroyed []vec.Vec3
	rSq := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy+dz*dz > rSq {
					continue
				}
				pos := center.Add(vec.Vec3{X: dx, Y: dy, Z: dz})
				id := e.world.GetBlock(pos)
				if id == block.AirBlockID || id == block.BedrockBlockID {
					continue
				}
				e.world.SetBlock(pos, block.AirBlockID)
				destroyed = append(destroyed, pos)
			}
		}
	}

	e.publish(eventbus.EventBlockExplode, explosionPayload{Center: center, Radius: radius, Destroyed: len(destroyed)}, 6)

	res := ExplodeResult{Destroyed: len(destroyed)}
	for _, pos := range destroyed {
		if e.core.OnBlockExploded(pos, center) {
			res.Collapses++
		}
	}
	return res, nil
}

// Evaluate считает устойчивость клетки, не меняя мир
func (e *Engine) Evaluate(pos vec.Vec3) cavein.SearchResult {
	return e.core.Evaluate(pos)
}

// Stats возвращает текущее состояние движка
func (e *Engine) Stats() Stats {
	return Stats{
		Ticks:         e.ticks.Load(),
		SimTime:       e.tasks.Now(),
		PendingTasks:  e.tasks.Pending(),
		FallingBlocks: e.falling.Count(),
		LoadedChunks:  e.world.LoadedChunkCount(),
		Running:       e.running.Load(),
	}
}

func (e *Engine) publish(eventType string, payload any, priority int) {
	if e.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope(engineSource, eventType, payload)
	if err != nil {
		e.log.Warn("Не удалось упаковать событие %s: %v", eventType, err)
		return
	}
	env.Priority = priority
	if err := e.bus.Publish(context.Background(), env); err != nil {
		e.log.Warn("Не удалось опубликовать событие %s: %v", eventType, err)
	}
}
