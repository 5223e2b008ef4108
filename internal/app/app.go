package app

import (
	"context"
	"net/http"
	"time"

	"github.com/iwtcode/spiroBench/internal/adapters/handlers"
	"github.com/iwtcode/spiroBench/internal/adapters/repositories/postgres"
	"github.com/iwtcode/spiroBench/internal/config"
	"github.com/iwtcode/spiroBench/internal/interfaces"
	"github.com/iwtcode/spiroBench/internal/metrics"
	"github.com/iwtcode/spiroBench/internal/middleware/logging"
	"github.com/iwtcode/spiroBench/internal/services/bench_service"
	"github.com/iwtcode/spiroBench/internal/services/kafka"
	"github.com/iwtcode/spiroBench/internal/usecases"

	"go.uber.org/fx"
)

// New создает новый экземпляр fx.App
func New() *fx.App {
	return fx.New(
		ConfigModule,
		LoggingModule,
		RepositoryModule,
		ProducerModule,
		MetricsModule,
		ServiceModule,
		UsecaseModule,
		HttpServerModule,
		// Invoke-функции для запуска фоновых задач и хуков жизненного цикла
		fx.Invoke(InvokeBenchLoop),
	)
}

// --- Модули FX ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(config.LoadConfiguration),
)

func ProvideLogger(cfg *config.AppConfig) *logging.Logger {
	loggerCfg := &logging.Config{
		Enabled:    cfg.Logging.Enable,
		Level:      cfg.Logging.Level,
		LogsDir:    cfg.Logging.LogsDir,
		SavingDays: uint(cfg.Logging.SavingDays),
	}
	return logging.NewLogger(loggerCfg, "SpiroBenchApp")
}

var LoggingModule = fx.Module("logging_module",
	fx.Provide(ProvideLogger),
)

var RepositoryModule = fx.Module("repository_module",
	fx.Provide(postgres.NewRepository),
)

var ProducerModule = fx.Module("producer_module",
	fx.Provide(kafka.NewKafkaProducer),
)

var MetricsModule = fx.Module("metrics_module",
	fx.Provide(metrics.NewMetrics),
)

// ProvideBenchService отдает сервис стенда под интерфейсом для usecases.
func ProvideBenchService(s *bench_service.Service) interfaces.BenchService {
	return s
}

// ProvideLiveFeed отдает websocket-рассыльщик обработчикам.
func ProvideLiveFeed(h *bench_service.Hub) interfaces.LiveFeed {
	return h
}

var ServiceModule = fx.Module("service_module",
	fx.Provide(
		bench_service.NewHub,
		bench_service.NewBenchService,
		ProvideBenchService,
		ProvideLiveFeed,
	),
)

var UsecaseModule = fx.Module("usecases_module",
	fx.Provide(usecases.NewUsecases),
)

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		handlers.NewHandler,
		handlers.ProvideRouter,
	),
	fx.Invoke(InvokeHttpServer),
)

// InvokeBenchLoop запускает цикл стенда и останавливает его вместе с приложением.
func InvokeBenchLoop(lc fx.Lifecycle, svc *bench_service.Service, producer interfaces.KafkaService, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting bench loop...")
			svc.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping bench loop...")
			svc.Stop()
			if err := producer.Close(); err != nil {
				logger.Warn("Failed to close Kafka producer", "error", err)
			}
			return logger.Close()
		},
	})
}

// InvokeHttpServer запускает HTTP-сервер.
func InvokeHttpServer(lc fx.Lifecycle, cfg *config.AppConfig, h http.Handler, logger *logging.Logger) {
	serverAddr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     h,
		ReadTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("HTTP Server is starting", "address", serverAddr)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}
