package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/mmo-cavein/internal/api"
	"github.com/annel0/mmo-cavein/internal/app"
	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/config"
	"github.com/annel0/mmo-cavein/internal/eventbus"
	"github.com/annel0/mmo-cavein/internal/logging"
	"github.com/annel0/mmo-cavein/internal/observability"
	"github.com/annel0/mmo-cavein/internal/storage"
	"github.com/annel0/mmo-cavein/internal/world"
	"github.com/annel0/mmo-cavein/internal/world/block"
	_ "github.com/annel0/mmo-cavein/internal/world/block/implementations"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (или ENV GAME_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🪨 Запуск сервера симуляции обвалов...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	restAddr := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	logging.Info("📡 Конфигурация: REST API=%s, тик=%v, обвалы=%v", restAddr, cfg.Server.TickInterval(), cfg.CaveIn.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry := observability.ShutdownFunc(observability.NoopShutdown)
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("⚠️ Телеметрия недоступна: %v", err)
			shutdownTelemetry = observability.NoopShutdown
		}
	}

	// === БЛОКИ ===
	if cfg.World.BlocksDir != "" {
		if err := block.LoadJSONBlocks(cfg.World.BlocksDir); err != nil && !os.IsNotExist(err) {
			logging.Error("Ошибка загрузки JSON-блоков: %v", err)
		}
	}
	logging.Debug("Зарегистрировано типов блоков: %d", len(block.RegisteredIDs()))

	// === ХРАНИЛИЩЕ И МИР ===
	worldStorage, err := storage.NewWorldStorage(cfg.World.DataPath)
	if err != nil {
		log.Fatalf("❌ Ошибка открытия хранилища мира: %v", err)
	}
	defer worldStorage.Close()

	seed := cfg.World.Seed
	meta, found, err := worldStorage.LoadMeta()
	switch {
	case err != nil:
		log.Fatalf("❌ Ошибка чтения параметров мира: %v", err)
	case found:
		seed = meta.Seed
		logging.Info("🌍 Загружен существующий мир (сид %d)", seed)
	default:
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		if err := worldStorage.SaveMeta(storage.WorldMeta{Seed: seed}); err != nil {
			log.Fatalf("❌ Ошибка сохранения параметров мира: %v", err)
		}
		logging.Info("🌍 Создан новый мир (сид %d)", seed)
	}

	var generator *world.Generator
	if cfg.World.Generate {
		generator = world.NewGenerator(seed)
	}
	gameWorld := world.NewWorld(generator)
	gameWorld.SetChunkLoader(worldStorage)

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		jsBus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, cfg.EventBus.RetentionDuration())
		if err != nil {
			log.Fatalf("❌ Ошибка подключения к NATS JetStream: %v", err)
		}
		bus = jsBus
		logging.Info("📨 Шина событий: NATS JetStream %s (стрим %s)", cfg.EventBus.URL, cfg.EventBus.Stream)
	} else {
		bus = eventbus.NewMemoryBus(1024)
		logging.Info("📨 Шина событий: in-memory")
	}
	eventbus.Init(bus)

	if _, err := eventbus.StartLoggingListener(bus, logging.GetComponentLogger("events")); err != nil {
		logging.Warn("⚠️ Не удалось подписать логгер событий: %v", err)
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	busExporter := eventbus.NewMetricsExporter(bus, registry)
	busExporter.Start()

	// === ДВИЖОК ===
	engine, err := app.NewEngine(gameWorld, cfg.CaveIn.ToCore(), app.Options{
		Storage:          worldStorage,
		Bus:              bus,
		Metrics:          cavein.NewMetrics(registry),
		TickInterval:     cfg.Server.TickInterval(),
		AutosaveInterval: cfg.World.AutosaveInterval(),
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания движка: %v", err)
	}

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := engine.Run(ctx); err != nil {
			logging.Error("❌ Движок завершился с ошибкой: %v", err)
		}
	}()

	// === REST API ===
	restServer, err := api.NewRestServer(api.Config{
		Port:     restAddr,
		Engine:   engine,
		Registry: registry,
	})
	if err != nil {
		log.Fatalf("❌ Ошибка создания REST API: %v", err)
	}
	go func() {
		if err := restServer.Start(); err != nil {
			logging.Error("❌ Ошибка REST API: %v", err)
			stop()
		}
	}()

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost%s", restAddr)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restAddr)
	logging.Info("   📊 Метрики: http://localhost%s/metrics", restAddr)
	logging.Info("💡 Пример: curl -X POST http://localhost%s/api/blocks/break -H 'Content-Type: application/json' -d '{\"x\":0,\"y\":60,\"z\":0}'", restAddr)

	<-ctx.Done()
	logging.Info("📡 Получен сигнал завершения, остановка...")

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logging.Debug("Остановка REST API...")
	if err := restServer.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}

	logging.Debug("Ожидание остановки движка...")
	<-engineDone

	busExporter.Stop()
	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия шины событий: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
