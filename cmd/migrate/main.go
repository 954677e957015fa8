package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Deekshi23/portfolio/internal/config"
	"github.com/Deekshi23/portfolio/internal/logging"
	"github.com/Deekshi23/portfolio/internal/model"
	"github.com/Deekshi23/portfolio/internal/repository"
	"github.com/Deekshi23/portfolio/internal/service"
	"github.com/Deekshi23/portfolio/internal/validation"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "migrate",
		Usage: "manage the portfolio contact store schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory containing *.up.sql migrations",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply pending migrations (default)",
				Action: runUp,
			},
			{
				Name:   "fresh",
				Usage:  "drop everything, then apply all migrations",
				Action: runFresh,
			},
			{
				Name:  "seed",
				Usage: "insert fake contact messages for local development",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "count",
						Usage: "number of messages to insert",
						Value: 25,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "random seed (0 picks one)",
					},
				},
				Action: runSeed,
			},
		},
		Action: runUp,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logging.Fatal("migrate failed", "error", err)
	}
}

func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level)
	return cfg, nil
}

func migrationDir(c *cli.Command) string {
	if dir := c.String("dir"); dir != "" {
		return dir
	}
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

func runUp(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer pool.Close()
		return runIncremental(ctx, pool, migrationDir(c))
	case config.DriverMongo:
		return withMongo(ctx, cfg, func(b *repository.Backend) error {
			// Backend.Open already ensured the indexes.
			slog.Info("mongodb indexes ensured", "database", cfg.Database.MongoDatabase)
			return nil
		})
	default:
		slog.Info("nothing to migrate", "driver", cfg.Database.Driver)
		return nil
	}
}

func runFresh(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer pool.Close()
		dir := migrationDir(c)
		if err := runDropAll(ctx, pool, dir); err != nil {
			return err
		}
		return runIncremental(ctx, pool, dir)
	case config.DriverMongo:
		return withMongo(ctx, cfg, func(b *repository.Backend) error {
			if err := b.Mongo.Collection("contact_messages").Drop(ctx); err != nil {
				return fmt.Errorf("drop contact_messages: %w", err)
			}
			slog.Info("contact_messages dropped")
			return repository.NewMongoContactRepository(b.Mongo).EnsureIndexes(ctx)
		})
	default:
		slog.Info("nothing to migrate", "driver", cfg.Database.Driver)
		return nil
	}
}

func withMongo(ctx context.Context, cfg *config.Config, fn func(*repository.Backend) error) error {
	b, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())
	return fn(b)
}

// collectUpFiles は .up.sql ファイル名をソート済みで返す
func collectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func ensureSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

// runIncremental は未適用の差分マイグレーションを順に適用する
func runIncremental(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	if err := ensureSchemaMigrations(ctx, pool); err != nil {
		return err
	}

	upFiles, err := collectUpFiles(dir)
	if err != nil {
		return err
	}
	applied := 0
	for _, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		if err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if exists {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		applied++
		slog.Info("migration completed", "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
	return nil
}

// runDropAll は 000_drop_all.sql で全テーブルを DROP する
func runDropAll(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	slog.Info("dropping all tables")
	sql, err := os.ReadFile(filepath.Join(dir, "000_drop_all.sql"))
	if err != nil {
		return fmt.Errorf("read 000_drop_all.sql: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	slog.Info("all tables dropped")
	return nil
}

func runSeed(ctx context.Context, c *cli.Command) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	count := c.Int("count")
	if count < 1 {
		return errors.New("--count must be at least 1")
	}

	b, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	faker := gofakeit.New(uint64(c.Int("seed")))
	now := time.Now().UTC()
	svc := service.NewContactService(b.Contacts,
		service.WithClock(func() time.Time {
			return faker.DateRange(now.AddDate(0, -3, 0), now).UTC()
		}),
	)

	inserted, err := seedMessages(ctx, svc, faker, count)
	if err != nil {
		return err
	}
	slog.Info("seed completed", "inserted", inserted, "requested", count, "driver", cfg.Database.Driver)
	return nil
}

// seedMessages submits count fake messages through svc. Inputs the validator
// rejects are logged and skipped.
func seedMessages(ctx context.Context, svc service.ContactService, faker *gofakeit.Faker, count int) (int, error) {
	inserted := 0
	for i := 0; i < count; i++ {
		in, meta := fakeContact(faker)
		msg, err := svc.Submit(ctx, in, meta)
		if err != nil {
			var verr validation.Errors
			if errors.As(err, &verr) {
				slog.Warn("skipping invalid fake message", "errors", verr.Messages())
				continue
			}
			return inserted, err
		}
		slog.Debug("seeded message", "id", msg.ID)
		inserted++
	}
	return inserted, nil
}

func fakeContact(f *gofakeit.Faker) (model.ContactInput, model.RequestMeta) {
	name := f.Name()
	email := f.Email()
	subject := strings.TrimSuffix(f.Sentence(5), ".")
	message := f.Paragraph(1, 3, 12, " ")
	return model.ContactInput{
			Name:    &name,
			Email:   &email,
			Subject: &subject,
			Message: &message,
		}, model.RequestMeta{
			ClientAddress: f.IPv4Address(),
			UserAgent:     f.UserAgent(),
		}
}
