package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/artifacts"
	"jobtracker-backend/internal/interviews"
	"jobtracker-backend/internal/pdfgen"
	"jobtracker-backend/internal/retrieval"
	"jobtracker-backend/internal/savedresumes"
	"jobtracker-backend/internal/scheduling"
	"jobtracker-backend/internal/shared/auth"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/server"
	"jobtracker-backend/internal/shared/storage/db"
	"jobtracker-backend/internal/shared/storage/object"
	localstore "jobtracker-backend/internal/shared/storage/object/local"
	s3store "jobtracker-backend/internal/shared/storage/object/s3"
	"jobtracker-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Objects      object.ObjectStore
	Artifacts    *artifacts.Store
	Generator    *pdfgen.Generator
	Verifier     *auth.Verifier
	SavedResumes *savedresumes.Service
	Interviews   *interviews.Service
	Scheduling   *scheduling.Service
	Reconciler   *scheduling.Reconciler
}

// Build prepares every dependency and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app, err := BuildServices(ctx, cfg)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewVerifier(auth.Options{
		Env:       app.Config.Env,
		Secret:    app.Config.JWTSecret,
		JWKSURL:   app.Config.JWTJWKSURL,
		Leeway:    app.Config.JWTLeeway,
		CacheSize: app.Config.AuthCacheSize,
		CacheTTL:  app.Config.AuthCacheTTL,
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}
	app.Verifier = verifier

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       app.Config,
		Verifier:     verifier,
		SavedResumes: savedresumes.NewHandler(app.SavedResumes),
		Interviews:   interviews.NewHandler(app.Interviews),
		Scheduling:   scheduling.NewHandler(app.Scheduling, app.Reconciler),
		Retrieval:    retrieval.NewHandler(verifier, app.Scheduling, app.Artifacts),
		Ready:        app.ready,
	})
	return app, nil
}

// BuildServices prepares storage and services without HTTP wiring. The
// artifact CLI uses it directly.
func BuildServices(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	objects, err := buildObjectStore(ctx, cfg)
	if err != nil {
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Objects:   objects,
		Artifacts: artifacts.NewStore(artifacts.Config{Dir: cfg.ScheduleDir}),
	}
	buildServices(app)
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) ready(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildRenderer(cfg config.Config) pdfgen.Renderer {
	if cfg.PDFRenderer == "chromedp" {
		return pdfgen.NewChromedpRenderer(cfg.ChromePath)
	}
	return pdfgen.NewFPDFRenderer()
}

func buildServices(app *App) {
	var (
		resumeRepo    savedresumes.Repo
		interviewRepo interviews.Repo
	)
	if app.DB != nil {
		resumeRepo = &savedresumes.PGRepo{DB: app.DB}
		interviewRepo = &interviews.PGRepo{DB: app.DB}
	} else {
		resumeRepo = savedresumes.NewMemoryRepo()
		interviewRepo = interviews.NewMemoryRepo()
	}

	app.Generator = pdfgen.NewGenerator(app.Objects, buildRenderer(app.Config), pdfgen.Config{
		MaxSourceBytes: app.Config.MaxUploadBytes,
	})
	app.Scheduling = scheduling.NewService(interviewRepo, resumeRepo, app.Generator, app.Artifacts, scheduling.Config{})
	app.Reconciler = scheduling.NewReconciler(app.Scheduling)
	app.SavedResumes = &savedresumes.Service{
		Repo:           resumeRepo,
		Store:          app.Objects,
		MaxUploadBytes: app.Config.MaxUploadBytes,
	}
	app.Interviews = &interviews.Service{
		Repo:            interviewRepo,
		Resumes:         app.SavedResumes,
		Linker:          app.Scheduling,
		ArtifactTimeout: app.Config.ArtifactGenerateTimeout,
	}

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          app.Config.Env,
		"postgres":     app.DB != nil,
		"object_store": app.Config.ObjectStoreType,
		"schedule_dir": app.Artifacts.Dir(),
		"renderer":     app.Config.PDFRenderer,
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
