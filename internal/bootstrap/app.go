package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/dashboard"
	"procedure-backend/internal/procedures"
	"procedure-backend/internal/quality"
	"procedure-backend/internal/quality/checklist"
	"procedure-backend/internal/queue"
	"procedure-backend/internal/shared/config"
	"procedure-backend/internal/shared/server"
	"procedure-backend/internal/shared/server/middleware"
	"procedure-backend/internal/shared/storage/db"
	"procedure-backend/internal/shared/storage/object"
	localstore "procedure-backend/internal/shared/storage/object/local"
	miniostore "procedure-backend/internal/shared/storage/object/minio"
	s3store "procedure-backend/internal/shared/storage/object/s3"
	"procedure-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Store             object.ObjectStore
	Queue             queue.Client
	Checks            []checklist.CheckDefinition
	MinScore          int
	ProceduresRepo    procedures.Repo
	ProceduresService *procedures.Service
	DashboardService  *dashboard.Service
	ProceduresHandler *procedures.Handler
	DashboardHandler  *dashboard.Handler
}

// Build connects storage, loads the checklist and wires every handler.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	checks, minScore, err := buildChecklist(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		Checks:   checks,
		MinScore: minScore,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		DB:          app.DB,
		Procedures:  app.ProceduresHandler,
		Dashboard:   app.DashboardHandler,
		RateLimiter: middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":         cfg.Env,
		"objectStore": store.Provider(),
		"database":    sqlDB != nil,
		"events":      queueClient != nil,
		"checks":      len(checks),
		"minScore":    minScore,
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	opts := db.OptionsFor(db.DetectProfile())
	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if cfg.IsDev() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(miniostore.Config{
			Endpoint:  cfg.MinioEndpoint,
			Region:    cfg.AWSRegion,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.EventsQueueURL) == "" {
		return nil, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.EventsQueueURL, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// buildChecklist returns the built-in checklist unless CHECKLIST_PATH names a
// file. A minimumScore in that file wins over MIN_QUALITY_SCORE.
func buildChecklist(cfg config.Config) ([]checklist.CheckDefinition, int, error) {
	if strings.TrimSpace(cfg.ChecklistPath) == "" {
		return checklist.Default(), cfg.MinQualityScore, nil
	}
	file, err := checklist.Load(cfg.ChecklistPath)
	if err != nil {
		return nil, 0, err
	}
	minScore := cfg.MinQualityScore
	if file.MinimumScore != nil {
		minScore = *file.MinimumScore
	}
	return file.Checks, minScore, nil
}

func buildServices(app *App) error {
	var repo procedures.Repo
	if app.DB != nil {
		repo = &procedures.PGRepo{DB: app.DB}
	} else {
		repo = procedures.NewMemoryRepo()
	}

	svc, err := procedures.NewService(repo, app.Store, quality.New(app.Checks), app.Queue, procedures.Options{
		MinScore:       app.MinScore,
		MaxUploadBytes: app.Config.MaxUploadBytes,
		CacheSize:      app.Config.AnalysisCacheSize,
	})
	if err != nil {
		return err
	}
	dash := dashboard.NewService(repo, app.MinScore)

	app.ProceduresRepo = repo
	app.ProceduresService = svc
	app.DashboardService = dash
	app.ProceduresHandler = procedures.NewHandler(svc, app.Config.MaxUploadBytes)
	app.DashboardHandler = dashboard.NewHandler(dash)
	return nil
}
