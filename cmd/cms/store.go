package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/n1fty/cms/internal/api/handler"
	"github.com/n1fty/cms/internal/core/ports"
	"github.com/n1fty/cms/internal/infrastructure/db/memory"
	mongodb "github.com/n1fty/cms/internal/infrastructure/db/mongo"
	"github.com/n1fty/cms/internal/infrastructure/db/postgres"
	"github.com/n1fty/cms/internal/pkg/config"
	"github.com/n1fty/cms/pkg/logger"
)

// store bundles the repositories of whichever backend STORE_DRIVER selects.
type store struct {
	users   ports.UserRepository
	clients ports.ClientRepository
	pinger  handler.Pinger
	close   func(context.Context) error
}

// openStore connects to the configured backend. With prepare set, pending
// Postgres migrations are applied and Mongo indexes are ensured.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, prepare bool) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg := cfg.Store.Postgres
		pool, err := postgres.Connect(ctx, postgres.Config{
			Host:     pg.Host,
			Port:     pg.Port,
			Database: pg.Database,
			User:     pg.User,
			Password: pg.Password,
			SSLMode:  pg.SSLMode,
			MaxConns: pg.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		if prepare {
			if _, err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, err
			}
		}
		log.Info().Str("host", pg.Host).Str("database", pg.Database).Msg("connected to postgres")
		return &store{
			users:   postgres.NewUserRepository(pool),
			clients: postgres.NewClientRepository(pool),
			pinger:  handler.PingFunc(pool.Ping),
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Store.Mongo.URI,
			Database: cfg.Store.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if prepare {
			if err := mongodb.EnsureIndexes(ctx, db); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
		}
		log.Info().Str("database", cfg.Store.Mongo.Database).Msg("connected to mongo")
		return &store{
			users:   mongodb.NewUserRepository(db),
			clients: mongodb.NewClientRepository(db),
			pinger:  mongodb.NewPinger(db),
			close:   client.Disconnect,
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		mem := memory.NewStore()
		return &store{
			users:   mem.Users(),
			clients: mem.Clients(),
			pinger:  mem,
			close:   func(context.Context) error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// loadConfig reads and validates configuration and initialises the logger.
func loadConfig(ctx context.Context, serve bool) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	validate := cfg.Validate
	if serve {
		validate = cfg.ValidateServe
	}
	if err := validate(); err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "cms",
	})
	return cfg, log, nil
}
