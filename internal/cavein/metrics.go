package cavein

import "github.com/prometheus/client_golang/prometheus"

// Metrics: Prometheus-метрики симуляции обвалов. Нулевой указатель
// допустим: все методы тогда ничего не делают.
type Metrics struct {
	evaluations prometheus.Counter
	collapses   *prometheus.CounterVec
	suppressed  *prometheus.CounterVec
	spawned     prometheus.Counter
	duplicates  prometheus.Counter
	visited     prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg. При reg == nil
// метрики создаются, но не регистрируются.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cavein",
			Name:      "evaluations_total",
			Help:      "Число оценок нестабильности.",
		}),
		collapses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cavein",
			Name:      "collapses_total",
			Help:      "Число обвалов по причине.",
		}, []string{"cause"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cavein",
			Name:      "suppressed_total",
			Help:      "Проверки обвала, не приведшие к обвалу.",
		}, []string{"reason"}),
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cavein",
			Name:      "blocks_spawned_total",
			Help:      "Созданные падающие блоки.",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cavein",
			Name:      "duplicate_skips_total",
			Help:      "Клетки, пропущенные из-за уже падающего блока.",
		}),
		visited: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cavein",
			Name:      "search_visited_cells",
			Help:      "Клеток, посещённых поиском опоры и сбором обвала.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.evaluations, m.collapses, m.suppressed, m.spawned, m.duplicates, m.visited)
	}
	return m
}

func (m *Metrics) evaluation(visited int) {
	if m == nil {
		return
	}
	m.evaluations.Inc()
	m.visited.Observe(float64(visited))
}

func (m *Metrics) collapse(cause Cause, visited int) {
	if m == nil {
		return
	}
	m.collapses.WithLabelValues(string(cause)).Inc()
	m.visited.Observe(float64(visited))
}

func (m *Metrics) suppress(reason string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(reason).Inc()
}

func (m *Metrics) spawn() {
	if m == nil {
		return
	}
	m.spawned.Inc()
}

func (m *Metrics) duplicate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}
