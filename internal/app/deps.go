package app

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mingleapp/backend/internal/auth"
	"github.com/mingleapp/backend/internal/config"
	"github.com/mingleapp/backend/internal/content"
	"github.com/mingleapp/backend/internal/db"
	"github.com/mingleapp/backend/internal/handlers"
	"github.com/mingleapp/backend/internal/media"
	"github.com/mingleapp/backend/internal/metrics"
	"github.com/mingleapp/backend/internal/relationships"
	"github.com/mingleapp/backend/internal/repositories"
	"github.com/mingleapp/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers and must be called
// on shutdown. The collector doubles as the middleware recorder.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, *metrics.Collector, func(context.Context) error, error) {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	users := repositories.NewPostgresUserRepository(pool)
	requests := repositories.NewPostgresFriendRequestRepository(pool)
	posts := repositories.NewPostgresPostRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	stories := repositories.NewPostgresStoryRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	sessions := auth.NewManager([]byte(cfg.TokenSecret), cfg.AccessTTL, cfg.RefreshTTL, sessionStore)

	cleanup := func(context.Context) error { return nil }

	var mediaStore handlers.MediaStore
	var discarder content.MediaDiscarder
	if cfg.ObjectStore.Bucket != "" {
		objectStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, nil, nil, err
		}
		remover := media.NewRemover(objectStore, media.RemoverConfig{
			Workers:   cfg.MediaRemover.Workers,
			QueueSize: cfg.MediaRemover.QueueSize,
		}, logger)
		mediaStore = objectStore
		discarder = remover
		cleanup = remover.Shutdown
	}

	engine := relationships.NewEngine(requests, users, users, collector, cfg.StorageTimeout)
	service := content.NewService(posts, comments, stories, users, users, discarder, collector, cfg.StorageTimeout)
	cascader := content.NewCascader(users, posts, comments, stories, requests, sessionStore, discarder, collector)

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      sessions,
		Relationships: engine,
		Content:       service,
		Cascader:      cascader,
		Media:         mediaStore,
		Metrics:       metrics.Handler(registry),
	}

	return deps, collector, cleanup, nil
}
