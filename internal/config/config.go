package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig оборачивает ошибки валидации конфигурации
var ErrInvalidConfig = errors.New("config: некорректная конфигурация")

// Config корневая структура конфигурации сервера
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	CaveIn    CaveInConfig    `yaml:"cavein"`
	World     WorldConfig     `yaml:"world"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port" validate:"gte=0,lte=65535"`
	TickRate int `yaml:"tick_rate" validate:"gte=1,lte=200"`
}

// CaveInConfig: параметры обвалов
type CaveInConfig struct {
	AllowFallingBlocks         bool    `yaml:"allow_falling_blocks"`
	Enabled                    bool    `yaml:"enabled"`
	CollapseChance             float64 `yaml:"collapse_chance" validate:"gte=0,lte=1"`
	MaxSupportDistance         float64 `yaml:"max_support_distance" validate:"gt=0"`
	MaxSupportSearchDistanceSq int     `yaml:"max_support_search_distance_sq" validate:"gte=1,lte=1024"`
	FallSound                  string  `yaml:"fall_sound"`
	DustIntensity              float64 `yaml:"dust_intensity" validate:"gte=0"`
	ImpactDamageMultiplier     float64 `yaml:"impact_damage_multiplier" validate:"gte=0"`
	AllowSidewaysFall          bool    `yaml:"allow_sideways_fall"`
	LayerDelayMs               int     `yaml:"layer_delay_ms" validate:"gte=0"`
}

type WorldConfig struct {
	Seed            int64  `yaml:"seed"`
	DataPath        string `yaml:"data_path" validate:"required"`
	AutosaveSeconds int    `yaml:"autosave_seconds" validate:"gte=0"`
	Generate        bool   `yaml:"generate"`
	BlocksDir       string `yaml:"blocks_dir"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours" validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	core := cavein.DefaultConfig()
	return &Config{
		Server: ServerConfig{TickRate: 20},
		CaveIn: CaveInConfig{
			AllowFallingBlocks:         core.AllowFallingBlocks,
			Enabled:                    core.CaveInsEnabled,
			CollapseChance:             core.CollapseChance,
			MaxSupportDistance:         core.MaxSupportDistance,
			MaxSupportSearchDistanceSq: core.MaxSupportSearchDistanceSq,
			FallSound:                  core.FallSound,
			DustIntensity:              core.DustIntensity,
			ImpactDamageMultiplier:     core.ImpactDamageMultiplier,
			AllowSidewaysFall:          core.AllowSidewaysFall,
			LayerDelayMs:               int(core.LayerDelay / time.Millisecond),
		},
		World: WorldConfig{
			DataPath:        "data",
			AutosaveSeconds: 300,
			Generate:        true,
		},
		EventBus: EventBusConfig{
			Stream:    "EVENTS",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{ServiceName: "mmo-cavein"},
	}
}

// ToCore преобразует секцию cavein в конфигурацию ядра.
// Сервер всегда авторитетен.
func (c CaveInConfig) ToCore() cavein.Config {
	return cavein.Config{
		AllowFallingBlocks:         c.AllowFallingBlocks,
		CaveInsEnabled:             c.Enabled,
		Authoritative:              true,
		CollapseChance:             c.CollapseChance,
		MaxSupportDistance:         c.MaxSupportDistance,
		MaxSupportSearchDistanceSq: c.MaxSupportSearchDistanceSq,
		FallSound:                  c.FallSound,
		DustIntensity:              c.DustIntensity,
		ImpactDamageMultiplier:     c.ImpactDamageMultiplier,
		AllowSidewaysFall:          c.AllowSidewaysFall,
		LayerDelay:                 time.Duration(c.LayerDelayMs) * time.Millisecond,
	}
}

// TickInterval возвращает длительность одного тика
func (s *ServerConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GAME_REST_PORT", 8088)
}

// AutosaveInterval возвращает период автосохранения; 0 — выключено
func (w *WorldConfig) AutosaveInterval() time.Duration {
	return time.Duration(w.AutosaveSeconds) * time.Second
}

// RetentionDuration возвращает срок хранения событий в стриме
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

var validate = validator.New()

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GAME_CONFIG; если и он пуст,
// возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
