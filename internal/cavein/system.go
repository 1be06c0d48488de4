package cavein

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/annel0/mmo-cavein/internal/eventbus"
	"github.com/annel0/mmo-cavein/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Options: зависимости системы обвалов
type Options struct {
	World   BlockAccess         // обязательно
	Falling FallingBlockSpawner // обязательно
	Tasks   TaskScheduler       // обязательно

	Beams   BeamDistanceFunc  // nil — NoBeams
	Rand    Rand              // nil — math/rand с сидом по времени
	Metrics *Metrics          // nil — без метрик
	Bus     eventbus.EventBus // nil — события не публикуются
	Logger  *logging.Logger   // nil — логгер компонента "cavein"
	Tracer  trace.Tracer      // nil — глобальный провайдер OpenTelemetry
}

// System: симуляция обвалов неустойчивой породы. Все методы вызываются
// только из авторитетного тика.
type System struct {
	cfg     Config
	world   BlockAccess
	falling FallingBlockSpawner
	tasks   TaskScheduler
	beams   BeamDistanceFunc
	rng     Rand
	metrics *Metrics
	bus     eventbus.EventBus
	log     *logging.Logger
	tracer  trace.Tracer
}

// New создаёт систему обвалов
func New(cfg Config, opts Options) (*System, error) {
	if opts.World == nil {
		return nil, errors.New("cavein: world is required")
	}
	if opts.Falling == nil {
		return nil, errors.New("cavein: falling block spawner is required")
	}
	if opts.Tasks == nil {
		return nil, errors.New("cavein: task scheduler is required")
	}

	s := &System{
		cfg:     cfg,
		world:   opts.World,
		falling: opts.Falling,
		tasks:   opts.Tasks,
		beams:   opts.Beams,
		rng:     opts.Rand,
		metrics: opts.Metrics,
		bus:     opts.Bus,
		log:     opts.Logger,
		tracer:  opts.Tracer,
	}
	if s.beams == nil {
		s.beams = NoBeams
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = logging.GetCaveInLogger()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/annel0/mmo-cavein/internal/cavein")
	}
	return s, nil
}

// Config возвращает действующую конфигурацию
func (s *System) Config() Config {
	return s.cfg
}

func (s *System) publish(ev CollapseEvent) {
	if s.bus == nil {
		return
	}
	env, err := eventbus.NewEnvelope(eventSource, eventbus.EventCollapse, ev)
	if err != nil {
		s.log.Warn("Не удалось упаковать событие обвала: %v", err)
		return
	}
	env.Priority = 5
	if err := s.bus.Publish(context.Background(), env); err != nil {
		s.log.Warn("Не удалось опубликовать событие обвала %s: %v", env.ID, err)
	}
}
