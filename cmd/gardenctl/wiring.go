package main

import (
	"context"
	"fmt"
	"time"

	"gardencore/internal/blob"
	"gardencore/internal/config"
	"gardencore/internal/core"
	"gardencore/internal/infra/persistence/memory"
	"gardencore/internal/infra/persistence/postgres"
	"gardencore/internal/infra/persistence/sqlite"
)

// clockedStore is the store surface the simulation wiring needs: the domain
// contract plus the hook that slaves record timestamps to the garden clock.
type clockedStore interface {
	core.PersistentStore
	SetNowFunc(func() time.Time)
}

// openStore builds the persistence backend selected on the command line.
// The returned closer is a no-op for backends without external handles.
func openStore(kind, path, dsn string) (clockedStore, func() error, error) {
	engine := core.NewDefaultRulesEngine()
	noop := func() error { return nil }
	switch kind {
	case "memory":
		return memory.NewStore(engine), noop, nil
	case "sqlite":
		store, err := sqlite.NewStore(path, engine)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, store.Close, nil
	case "postgres":
		store, err := postgres.NewStore(dsn, engine)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q, want memory, sqlite, or postgres", kind)
	}
}

// openBlobs builds the archive blob store. An empty driver defers to the
// environment the same way the service deployment does.
func openBlobs(ctx context.Context, cfg config.ArchiveConfig) (blob.Store, error) {
	switch cfg.Driver {
	case "":
		return blob.Open(ctx)
	case "fs":
		return blob.NewFilesystem(cfg.FSRoot)
	case "memory":
		return blob.NewMemory(), nil
	case "s3":
		return blob.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
