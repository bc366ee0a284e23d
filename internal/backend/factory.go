package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/cache"
	"saldo/internal/log"
	"saldo/internal/storage"
	"saldo/internal/storage/memory"
)

const summaryKeyPrefix = "saldo:"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Warn("Initialized memory backend, transactions are lost on restart")

	return &BackendResult{
		Backend: memory.New(),
		Cleanup: nil,
	}, nil
}

// CreateSummaryCache implements Factory.CreateSummaryCache. A Redis server
// that cannot be reached at startup is an error rather than a silent fallback.
func (f *DefaultFactory) CreateSummaryCache(ctx context.Context, config CacheConfig) (*CacheResult, error) {
	switch config.Type {
	case NoCache, "":
		return &CacheResult{Cache: cache.Nop[decimal.Decimal]{}}, nil

	case MemoryCache:
		lru := cache.NewLRUCache[decimal.Decimal](config.Size, config.TTL)
		manager := cache.NewManager(f.logger)
		manager.Register(lru)
		manager.Start(cleanupInterval(config.TTL))

		f.logger.Info("Initialized in-memory summary cache", "max_entries", config.Size, "ttl", config.TTL.String())

		return &CacheResult{
			Cache: lru,
			Cleanup: func() error {
				manager.Stop()
				return nil
			},
			Stats: lru.Stats,
		}, nil

	case RedisCache:
		client, err := cache.NewRedisClient(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", config.RedisAddr, err)
		}

		f.logger.Info("Initialized Redis summary cache", "addr", config.RedisAddr, "ttl", config.TTL.String())

		return &CacheResult{
			Cache:   cache.NewRedisCache[decimal.Decimal](client, summaryKeyPrefix, config.TTL),
			Cleanup: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported cache type: %s", config.Type)
	}
}

// Expired entries are swept at the TTL, bounded to [1m, 10m].
func cleanupInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl < time.Minute:
		return time.Minute
	case ttl > 10*time.Minute:
		return 10 * time.Minute
	default:
		return ttl
	}
}
