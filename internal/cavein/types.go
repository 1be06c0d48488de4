package cavein

import "github.com/annel0/mmo-cavein/internal/vec"

// SupportCandidate: найденная вертикальная опора
type SupportCandidate struct {
	Pos        vec.Vec3 `json:"pos"`
	Strength   int      `json:"strength"`
	DistanceSq int      `json:"distance_sq"` // Квадрат горизонтального расстояния от точки поиска
}

// SearchResult: результат поиска опоры и оценки нестабильности
type SearchResult struct {
	Candidates             []SupportCandidate `json:"candidates"`
	Unconnected            bool               `json:"unconnected"`
	NearestSupportDistance float64            `json:"nearest_support_distance"`
	Instability            float64            `json:"instability"`
	Visited                int                `json:"visited"`
}

// GatherResult: набор клеток, выбранных для обвала
type GatherResult struct {
	Positions []vec.Vec3 `json:"positions"`
	Cap       int        `json:"cap"`       // Предел числа клеток для этого броска
	MaxDepth  int        `json:"max_depth"` // Предел подъёма над стартовой клеткой
	Visited   int        `json:"visited"`
}

// Cause: почему обвал состоялся
type Cause string

const (
	CauseUnconnected Cause = "unconnected"
	CauseUnstable    Cause = "unstable"
)

// Trigger: что запустило проверку обвала
type Trigger string

const (
	TriggerDirect   Trigger = "direct"
	TriggerBroken   Trigger = "broken"
	TriggerExploded Trigger = "exploded"
	TriggerCascade  Trigger = "cascade"
)

// CollapseEvent публикуется в шину событий при каждом обвале
type CollapseEvent struct {
	Pos             vec.Vec3  `json:"pos"`
	Trigger         Trigger   `json:"trigger"`
	Cause           Cause     `json:"cause"`
	Count           int       `json:"count"`
	Layers          int       `json:"layers"`
	Instability     float64   `json:"instability"`
	ExplosionCenter *vec.Vec3 `json:"explosion_center,omitempty"`
}
