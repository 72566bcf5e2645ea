package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-discounts/db"
	"github.com/xenking/kart-discounts/internal/domain/discount"
	"github.com/xenking/kart-discounts/internal/storage/postgres"
)

func main() {
	var (
		databaseURL string
		rulesFile   string
		exponent    int
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&rulesFile, "rules-file", "", "path to a YAML rule pack (embedded demonstration pack when empty)")
	flag.IntVar(&exponent, "minor-unit-exponent", int(discount.DefaultMinorUnitExponent), "currency minor unit digits")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, rulesFile, int32(exponent)); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, rulesFile string, exponent int32) error {
	data := db.SeedRules
	if rulesFile != "" {
		slog.Info("reading rule pack", slog.String("path", rulesFile))

		var err error
		if data, err = os.ReadFile(rulesFile); err != nil {
			return errors.Wrap(err, "read rule pack")
		}
	}

	rules, err := parsePack(data, time.Now(), exponent)
	if err != nil {
		return err
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewRuleRepository(pool)
	for _, r := range rules {
		id, err := repo.Upsert(ctx, r)
		if err != nil {
			return errors.Wrap(err, "seed rule")
		}
		slog.Info("rule seeded",
			slog.Int64("id", id),
			slog.String("name", r.Name),
			slog.Int("priority", r.Priority),
		)
	}

	return nil
}
