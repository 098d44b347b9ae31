// main.go — точка входа Document Intake.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"

	"github.com/bigkaa/document-intake/internal/api/apispec"
	"github.com/bigkaa/document-intake/internal/api/handlers"
	"github.com/bigkaa/document-intake/internal/api/middleware"
	"github.com/bigkaa/document-intake/internal/config"
	"github.com/bigkaa/document-intake/internal/database"
	"github.com/bigkaa/document-intake/internal/domain/token"
	"github.com/bigkaa/document-intake/internal/repository"
	"github.com/bigkaa/document-intake/internal/server"
	"github.com/bigkaa/document-intake/internal/service"
	"github.com/bigkaa/document-intake/internal/storage/filestore"
	"github.com/bigkaa/document-intake/internal/storage/namespace"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Document Intake запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("upload_dir", cfg.UploadDir),
		slog.String("token_store", cfg.TokenStore),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Document Intake остановлен")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Проверка встроенного OpenAPI-документа
	if _, err := apispec.Load(ctx); err != nil {
		return err
	}

	// 4. Файловое хранилище пространств имён
	fs := afero.NewOsFs()
	namespaces := namespace.New(fs, cfg.UploadDir, cfg.AuthorizationDir)
	if err := namespaces.EnsureRoot(); err != nil {
		return err
	}

	// 5. Хранилище токенов
	var (
		tokenRepo repository.TokenRepository
		pgChecker handlers.ReadinessChecker
	)
	switch cfg.TokenStore {
	case config.TokenStorePostgres:
		pool, pgDB, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		defer pgDB.Close()

		tokenRepo = repository.NewTokenRepository(pgDB)
		pgChecker = database.NewReadinessChecker(pool)

		// 5.1 Мониторинг PostgreSQL через topologymetrics
		if dephealthSvc := startDephealth(ctx, cfg, pgDB, logger); dephealthSvc != nil {
			defer dephealthSvc.Stop()
		}
	default:
		logger.Warn("Токены хранятся в памяти процесса и теряются при перезапуске; " +
			"несколько экземпляров не видят токены друг друга")
		tokenRepo = repository.NewMemoryTokenRepository()
	}

	// 6. Кэш токенов (опционально)
	var cache *service.CacheService
	if cfg.TokenCacheSize > 0 {
		cache = service.NewCacheService(cfg.TokenCacheSize, cfg.TokenTTL)
		logger.Info("Кэш токенов включён", slog.Int("size", cfg.TokenCacheSize))
	}

	// 7. Сервисы
	documentSvc := service.NewDocumentService(namespaces, filestore.New(fs), logger)
	tokenSvc := service.NewTokenService(tokenRepo, cache, token.SystemClock{}, cfg.TokenTTL, logger)
	signedSvc := service.NewSignedDocumentService(tokenSvc, documentSvc, logger)

	// 8. Обработчики
	healthHandler := handlers.NewHealthHandler(namespaces, pgChecker)
	apiHandler := handlers.NewAPIHandler(
		documentSvc,
		tokenSvc,
		signedSvc,
		healthHandler,
		apispec.Raw(),
		handlers.UploadLimits{MaxMemory: cfg.MaxMemory, MaxUploadSize: cfg.MaxUploadSize},
		logger,
	)

	// 9. Ограничение частоты скачивания подписанных документов
	limiter := middleware.NewRateLimiter(cfg.FetchRateLimit, cfg.FetchRateBurst, cfg.TrustedProxies...)
	go limiter.Run(ctx)

	// 10. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
		middleware.OnlyPaths(limiter.Middleware(), "/signed-document"),
	)
	return srv.Run(ctx)
}

// openPostgres применяет миграции и открывает пул соединений.
// *sql.DB работает поверх того же пула.
func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, *sql.DB, error) {
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		return nil, nil, err
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return pool, database.OpenDB(pool), nil
}

// startDephealth запускает topologymetrics. Ошибки не фатальны.
func startDephealth(ctx context.Context, cfg *config.Config, pgDB *sql.DB, logger *slog.Logger) *service.DephealthService {
	svc, err := service.NewDephealthService(
		cfg.ServiceID,
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL("postgres"),
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		return nil
	}

	if err := svc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		return nil
	}

	logger.Info("topologymetrics запущен",
		slog.String("group", cfg.DephealthGroup),
		slog.String("check_interval", cfg.DephealthCheckInterval.String()),
	)
	return svc
}
