package cavein

import "time"

// Config: параметры симуляции обвалов. Читается один раз при загрузке
// и передаётся в New; во время работы не перечитывается.
type Config struct {
	AllowFallingBlocks bool // Глобальное разрешение падающих блоков
	CaveInsEnabled     bool // Глобальное разрешение обвалов
	Authoritative      bool // Только авторитетная сторона меняет мир

	CollapseChance             float64 // Базовая вероятность обвала при пройденной проверке нестабильности
	MaxSupportDistance         float64 // Расстояние до опоры, при котором нестабильность достигает 1
	MaxSupportSearchDistanceSq int     // Квадрат горизонтального радиуса поиска опоры

	FallSound              string
	DustIntensity          float64
	ImpactDamageMultiplier float64
	AllowSidewaysFall      bool

	LayerDelay time.Duration // Задержка между слоями обвала (симулированное время)
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		AllowFallingBlocks:         true,
		CaveInsEnabled:             true,
		Authoritative:              true,
		CollapseChance:             0.25,
		MaxSupportDistance:         2.0,
		MaxSupportSearchDistanceSq: 36,
		FallSound:                  "effect/rockslide",
		DustIntensity:              1.0,
		ImpactDamageMultiplier:     1.0,
		AllowSidewaysFall:          true,
		LayerDelay:                 200 * time.Millisecond,
	}
}

// Внутренние пределы поиска
const (
	supportProbeDepth     = 4     // Слоёв под позицией для проверки вертикальной опоры
	gatherMaxHorizontalSq = 144   // Квадрат горизонтального радиуса сбора обвала
	gatherWalkDown        = 3     // Клеток вниз под каждой клеткой обвала
	maxNeighbourChecks    = 3     // Проверок соседей при разрушении блока
	retriggerCount        = 3     // Повторных запусков вокруг обвала
	retriggerJitter       = 8     // Разброс повторных запусков по X/Z
	instabilityEpsilon    = 0.001 // Сдвиг проверки нестабильности в сторону обвала
)

const (
	maxInstability = 99.0
	eventSource    = "cavein"
)
