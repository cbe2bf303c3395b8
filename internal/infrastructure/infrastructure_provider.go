package infrastructure

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/infrastructure/auth"
	"jan-server/services/video-conference-api/internal/infrastructure/cache"
	"jan-server/services/video-conference-api/internal/infrastructure/database"
	"jan-server/services/video-conference-api/internal/infrastructure/livekit"
	"jan-server/services/video-conference-api/internal/infrastructure/reconciler"
	"jan-server/services/video-conference-api/internal/infrastructure/store"
)

// InfrastructureProvider provides all infrastructure dependencies.
var InfrastructureProvider = wire.NewSet(
	ProvideDatabase,
	ProvideSessionStore,
	ProvideLocker,
	ProvideAuthValidator,
	livekit.NewTokenGenerator,
	livekit.NewRoomClient,
	livekit.NewIssuer,
	wire.Bind(new(videosession.TokenIssuer), new(*livekit.Issuer)),
	wire.Bind(new(videosession.RoomDirectory), new(*livekit.RoomClient)),
	ProvideSyncer,
)

// ProvideDatabase opens and migrates PostgreSQL when the postgres store is
// selected. It returns a nil handle for the memory store.
func ProvideDatabase(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return nil, func() {}, nil
	}

	level := gormlogger.Warn
	if !cfg.IsProduction() {
		level = gormlogger.Info
	}
	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        level,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
	return db, cleanup, nil
}

// ProvideSessionStore picks the session store backing the service.
func ProvideSessionStore(db *gorm.DB, log zerolog.Logger) videosession.Store {
	if db == nil {
		log.Warn().Msg("using in-memory session store; sessions are lost on restart")
		return store.NewMemoryStore(log)
	}
	return store.NewPostgresStore(db, log)
}

// ProvideLocker returns a Redis-backed lock when REDIS_URL is set and a
// process-local one otherwise.
func ProvideLocker(cfg *config.Config, log zerolog.Logger) (cache.Locker, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewLocalLocker(), func() {}, nil
	}

	locker, err := cache.NewRedisLocker(cfg.RedisURL, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := locker.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return locker, cleanup, nil
}

// ProvideAuthValidator provides the JWT validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, func(), error) {
	validator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return validator, validator.Close, nil
}

// ProvideSyncer provides the room reconciler. It returns nil when
// reconciliation is disabled.
func ProvideSyncer(
	service videosession.Service,
	rooms videosession.RoomDirectory,
	locker cache.Locker,
	cfg *config.Config,
	log zerolog.Logger,
) *reconciler.Syncer {
	if !cfg.ReconcileEnabled {
		return nil
	}
	return reconciler.NewSyncer(service, rooms, locker, cfg, log)
}
