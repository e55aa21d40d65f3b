package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/prepnest/prepnest/internal/bootstrap"
	"github.com/prepnest/prepnest/internal/domain/qna"
	"github.com/prepnest/prepnest/internal/domain/users"
	"github.com/prepnest/prepnest/internal/infra/attachstore"
	"github.com/prepnest/prepnest/internal/infra/config"
	"github.com/prepnest/prepnest/internal/infra/directory"
	"github.com/prepnest/prepnest/internal/infra/embedder"
	"github.com/prepnest/prepnest/internal/infra/qnarepo"
	"github.com/prepnest/prepnest/internal/infra/relatedindex"
	"github.com/prepnest/prepnest/internal/infra/userrepo"
)

// stores bundles every stateful backend picked by the storage driver so the
// Wire graph hands out repositories from a single construction site.
type stores struct {
	questions qna.QuestionRepository
	answers   qna.AnswerRepository
	users     users.Repository
	related   qna.RelatedIndex
	cache     directory.ProfileCache
	closers   bootstrap.Closers
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newStores(cfg *config.Config, logger *slog.Logger) *stores {
	s := &stores{}

	switch cfg.Storage.Driver {
	case "postgres":
		if pool := openPostgres(cfg.Storage.Postgres, logger); pool != nil {
			s.questions = qnarepo.NewPostgresQuestionRepository(pool)
			s.answers = qnarepo.NewPostgresAnswerRepository(pool)
			s.users = userrepo.NewPostgresRepository(pool)
			s.related = relatedindex.NewPostgres(pool)
			s.closers = append(s.closers, closerFunc(func() error {
				pool.Close()
				return nil
			}))
			logger.Info("postgres storage enabled")
		}
	case "pebble":
		store, err := qnarepo.OpenPebble(cfg.Storage.Pebble.Path)
		if err != nil {
			logger.Error("failed to open pebble store, using memory storage", "path", cfg.Storage.Pebble.Path, "error", err)
		} else {
			s.questions = qnarepo.NewPebbleQuestionRepository(store)
			s.answers = qnarepo.NewPebbleAnswerRepository(store)
			s.closers = append(s.closers, store)
			logger.Info("pebble storage enabled", "path", cfg.Storage.Pebble.Path)
		}
	}

	if s.questions == nil {
		s.questions = qnarepo.NewMemoryQuestionRepository()
		s.answers = qnarepo.NewMemoryAnswerRepository()
	}
	if s.users == nil {
		s.users = userrepo.NewMemoryRepository()
	}
	if s.related == nil {
		s.related = relatedindex.NewMemory()
	}

	s.cache = buildProfileCache(cfg, logger, &s.closers)
	return s
}

func openPostgres(cfg config.PostgresConfig, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory storage")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory storage", "error", err)
		return nil
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory storage", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory storage", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

func buildProfileCache(cfg *config.Config, logger *slog.Logger, closers *bootstrap.Closers) directory.ProfileCache {
	if !cfg.Directory.Cache.Enabled {
		return directory.NewMemoryCache()
	}
	opt, err := buildValkeyOptions(cfg.Directory.Cache.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return directory.NewMemoryCache()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return directory.NewMemoryCache()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return directory.NewMemoryCache()
	}
	*closers = append(*closers, closerFunc(func() error {
		client.Close()
		return nil
	}))
	logger.Info("valkey profile cache enabled", "addr", cfg.Directory.Cache.Addr)
	return directory.NewValkeyCache(client, "profile")
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideQuestionRepository(s *stores) qna.QuestionRepository { return s.questions }

func provideAnswerRepository(s *stores) qna.AnswerRepository { return s.answers }

func provideUserRepository(s *stores) users.Repository { return s.users }

func provideRelatedIndex(s *stores) qna.RelatedIndex { return s.related }

func provideClosers(s *stores) bootstrap.Closers { return s.closers }

func provideProfileResolver(cfg *config.Config, s *stores, logger *slog.Logger) qna.ProfileResolver {
	return directory.NewResolver(s.users, s.cache, cfg.Directory.Cache.TTL, logger)
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) qna.ObjectStorage {
	if !cfg.Attachments.Enabled {
		return attachstore.NewMemoryStorage()
	}
	storage, err := attachstore.NewMinioStorage(
		cfg.Attachments.Endpoint,
		cfg.Attachments.AccessKey,
		cfg.Attachments.SecretKey,
		cfg.Attachments.Bucket,
		cfg.Attachments.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize object storage, using memory storage", "error", err)
		return attachstore.NewMemoryStorage()
	}
	logger.Info("object storage enabled", "bucket", cfg.Attachments.Bucket)
	return storage
}

func provideEmbedder(cfg *config.Config) qna.Embedder {
	return embedder.NewDeterministic(cfg.Related.Dim)
}

func provideQnAConfig(cfg *config.Config) qna.Config {
	return qna.Config{
		RelatedLimit:       cfg.Related.Limit,
		MaxAttachmentBytes: cfg.Attachments.MaxBytes,
	}
}

func provideUsersConfig(cfg *config.Config) users.Config {
	return users.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}
