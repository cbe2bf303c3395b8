// @title           Video Conference API
// @version         1.0
// @description     Schedules teacher/student video sessions on LiveKit.
// @description     Manages the session lifecycle and issues participant tokens.

// @contact.name   Jan Team
// @contact.url    https://github.com/janhq/jan-server

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3008
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token from Keycloak or the auth service

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain"
	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/infrastructure"
	"jan-server/services/video-conference-api/internal/infrastructure/cache"
	"jan-server/services/video-conference-api/internal/infrastructure/livekit"
	"jan-server/services/video-conference-api/internal/infrastructure/logger"
	"jan-server/services/video-conference-api/internal/infrastructure/metrics"
	"jan-server/services/video-conference-api/internal/infrastructure/observability"
	"jan-server/services/video-conference-api/internal/infrastructure/reconciler"
	"jan-server/services/video-conference-api/internal/interfaces/httpserver"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	syncer     *reconciler.Syncer
	log        zerolog.Logger
}

// NewApplication creates a new application instance. syncer may be nil.
func NewApplication(httpServer *httpserver.HTTPServer, syncer *reconciler.Syncer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		syncer:     syncer,
		log:        log,
	}
}

// Start runs the application until ctx is cancelled or the server fails.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.syncer != nil {
		a.syncer.Start(gctx)
		defer a.syncer.Stop()
	}

	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})

	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build application")
	}
	defer cleanup()

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("store", cfg.StoreDriver).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication wires the application by hand, in the same order as ProviderSet.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Application, func(), error) {
		cleanup()
		return nil, nil, err
	}

	db, closeDB, err := infrastructure.ProvideDatabase(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	locker, closeLocker, err := infrastructure.ProvideLocker(cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeLocker)

	authValidator, closeAuth, err := infrastructure.ProvideAuthValidator(ctx, cfg, log)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeAuth)

	sessionStore := infrastructure.ProvideSessionStore(db, log)
	roomClient := livekit.NewRoomClient(cfg, log)
	issuer := livekit.NewIssuer(roomClient, livekit.NewTokenGenerator(cfg), log)

	sessionService := ProvideSessionService(
		sessionStore,
		issuer,
		roomClient,
		domain.ProvidePolicy(cfg),
		domain.ProvideServiceOptions(cfg),
		log,
	)

	syncer := infrastructure.ProvideSyncer(sessionService, roomClient, locker, cfg, log)
	httpServer := httpserver.New(cfg, log, sessionService, authValidator, ProvideReadinessChecks(db, locker))

	return NewApplication(httpServer, syncer, log), cleanup, nil
}

// ProvideSessionService builds the session service with metrics recording.
func ProvideSessionService(
	store videosession.Store,
	issuer videosession.TokenIssuer,
	rooms videosession.RoomDirectory,
	policy videosession.Policy,
	opts videosession.Options,
	log zerolog.Logger,
) videosession.Service {
	return metrics.InstrumentService(videosession.NewService(store, issuer, rooms, policy, opts, log))
}

// ProvideReadinessChecks probes the backing services that are configured.
func ProvideReadinessChecks(db *gorm.DB, locker cache.Locker) httpserver.ReadinessChecks {
	checks := httpserver.ReadinessChecks{}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if redisLocker, ok := locker.(*cache.RedisLocker); ok {
		checks["redis"] = redisLocker.HealthCheck
	}
	return checks
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
