package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Deekshi23/portfolio/internal/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Backend bundles the stores selected by configuration.
type Backend struct {
	Contacts ContactRepository
	// Admin is nil for the memory driver, which has no raw collections.
	Admin AdminRepository
	DB    DB
	// Mongo is set whenever a component needs MongoDB (the mongo driver or
	// the gridfs image store).
	Mongo *mongo.Database

	closers []func(context.Context) error
}

// Open connects to the configured database(s) and builds the repositories.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}

	if cfg.UsesMongo() {
		client, err := NewMongoClient(ctx, cfg.Database.MongoURL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)
		b.Mongo = client.Database(cfg.Database.MongoDatabase)
		slog.Info("connected to mongodb", "database", cfg.Database.MongoDatabase)

		if cfg.Database.Driver == config.DriverMongo {
			contacts := NewMongoContactRepository(b.Mongo)
			if err := contacts.EnsureIndexes(ctx); err != nil {
				b.Close(ctx)
				return nil, err
			}
			b.Contacts = contacts
			b.Admin = NewMongoAdminRepository(b.Mongo)
			b.DB = MongoPinger{Client: client}
		}
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := NewPool(ctx, cfg.Database.URL)
		if err != nil {
			b.Close(ctx)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		b.Contacts = NewPgContactRepository(pool)
		b.Admin = NewPgAdminRepository(pool)
		b.DB = pool
		slog.Info("connected to postgres")
	case config.DriverMemory:
		mem := NewMemoryContactRepository()
		b.Contacts = mem
		b.DB = mem
		slog.Warn("using in-memory contact store; messages are lost on restart")
	}

	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			slog.Error("close backend", "error", err)
		}
	}
	b.closers = nil
}
