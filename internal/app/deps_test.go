package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mingleapp/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		TokenSecret:    "test-secret",
		AccessTTL:      time.Minute,
		RefreshTTL:     time.Hour,
		StorageTimeout: time.Second,
		ObjectStore:    config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		MediaRemover:   config.MediaRemoverConfig{Workers: 1, QueueSize: 4},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, collector, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collector == nil {
		t.Fatal("expected metrics collector")
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = cleanup(ctx)
	}()

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Relationships == nil {
		t.Fatal("expected relationship engine to be configured")
	}
	if deps.Content == nil {
		t.Fatal("expected content service to be configured")
	}
	if deps.Cascader == nil {
		t.Fatal("expected account cascader to be configured")
	}
	if deps.Media == nil {
		t.Fatal("expected media store to be configured")
	}
	if deps.Metrics == nil {
		t.Fatal("expected metrics handler to be configured")
	}
}

func TestBuildDependenciesWithoutObjectStore(t *testing.T) {
	cfg := config.Config{
		TokenSecret:    "test-secret",
		AccessTTL:      time.Minute,
		RefreshTTL:     time.Hour,
		StorageTimeout: time.Second,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, _, cleanup, err := buildDependencies(context.Background(), fakePool{}, cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Media != nil {
		t.Fatal("expected no media store without a configured bucket")
	}
	if err := cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
