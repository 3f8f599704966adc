// Package repository selects and opens the backing store named by the configuration.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cardshelf/internal/config"
	"cardshelf/internal/domain/repositories"
	placementRepo "cardshelf/internal/domain/repositories/placement"
	"cardshelf/internal/repository/memory"
	"cardshelf/internal/repository/postgres"
	postgresPlacement "cardshelf/internal/repository/postgres/placement"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories and transaction manager of one backing store
type Store struct {
	Folders   placementRepo.FolderRepository
	Cards     placementRepo.CardRepository
	TxManager repositories.TransactionManager
	Pool      *pgxpool.Pool // nil for the memory store
}

// Ping checks the database connection; the memory store is always reachable
func (s *Store) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return nil
	}
	return s.Pool.Ping(ctx)
}

// Close releases the connection pool, if any
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// Open creates the store selected by cfg.StoreDriver, migrating Postgres first
// when cfg.AutoMigrate is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return NewMemoryStore(logger), nil
	case config.StoreDriverPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *slog.Logger) *Store {
	mem := memory.NewStore(logger)
	return &Store{
		Folders:   memory.NewFolderRepository(mem),
		Cards:     memory.NewCardRepository(mem),
		TxManager: mem.TransactionManager(),
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for the postgres store")
	}

	if cfg.AutoMigrate {
		if err := migrateUp(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("database connected",
		"max_conns", cfg.DBMaxConns,
		"min_conns", cfg.DBMinConns,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	return &Store{
		Folders:   postgresPlacement.NewFolderRepository(repoConfig),
		Cards:     postgresPlacement.NewCardRepository(repoConfig),
		TxManager: postgres.NewTransactionManager(pool, logger),
		Pool:      pool,
	}, nil
}

func migrateUp(databaseURL string, logger *slog.Logger) error {
	migrator, err := postgres.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	return migrator.Up()
}
