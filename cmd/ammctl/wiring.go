package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"collectibleAMM/internal/assets"
	"collectibleAMM/internal/config"
	"collectibleAMM/internal/delegate"
	"collectibleAMM/internal/engine"
	"collectibleAMM/internal/metadata"
	"collectibleAMM/internal/metrics"
	"collectibleAMM/internal/storage"
	lvl "collectibleAMM/internal/storage/leveldb"
	"collectibleAMM/internal/storage/postgres"
)

// ledger is an opened store together with the sink its events go to. pg is
// set when the store is Postgres so other writers can share its pool.
type ledger struct {
	store  storage.Store
	events storage.EventSink
	pg     *postgres.Store
	close  func()
}

func openLedger(ctx context.Context, settings config.StoreSettings) (*ledger, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	journal := func() storage.EventSink {
		if settings.Journal == "" {
			return storage.NopSink{}
		}
		return storage.NewJsonlSink(settings.Journal)
	}

	switch settings.Backend {
	case config.StoreMemory:
		return &ledger{store: storage.NewMemoryStore(), events: journal(), close: func() {}}, nil
	case config.StoreLevelDB:
		db, err := lvl.Open(settings.LevelDBPath)
		if err != nil {
			return nil, fmt.Errorf("open leveldb: %w", err)
		}
		return &ledger{store: db, events: journal(), close: func() { _ = db.Close() }}, nil
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, settings.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return &ledger{store: pg, events: pg, pg: pg, close: pg.Close}, nil
	}
	return nil, fmt.Errorf("unknown store %q", settings.Backend)
}

// runtime is an engine wired to a ledger and the in-process custody
// simulation.
type runtime struct {
	engine   *engine.Engine
	ledger   *ledger
	book     *assets.Book
	delegate *delegate.Program
	registry *prometheus.Registry
}

func newRuntime(ctx context.Context, es config.EngineSettings, ss config.StoreSettings, logger *zap.Logger) (*runtime, error) {
	cfg, err := es.Engine()
	if err != nil {
		return nil, err
	}

	var source engine.MetadataSource
	if ss.MetadataFile != "" {
		static, err := metadata.LoadStaticSource(ss.MetadataFile)
		if err != nil {
			return nil, err
		}
		cached, err := metadata.NewCachedSource(static, ss.MetadataCacheSize, logger)
		if err != nil {
			return nil, err
		}
		source = cached
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	l, err := openLedger(ctx, ss)
	if err != nil {
		return nil, err
	}

	book := assets.NewBook()
	program := delegate.NewProgram(cfg.DelegateProgramID, logger)
	deps := engine.Deps{
		Store:     l.store,
		Events:    l.events,
		Transfers: assets.NewBookRouter(book, logger),
		Metadata:  source,
		Delegate:  program,
		Recorder:  recorder,
	}

	eng, err := engine.New(cfg, deps, logger)
	if err != nil {
		l.close()
		return nil, err
	}
	return &runtime{engine: eng, ledger: l, book: book, delegate: program, registry: registry}, nil
}

func (r *runtime) Close() {
	r.ledger.close()
}
