package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/saturnino-fabrica-de-software/docverify/internal/config"
	"github.com/saturnino-fabrica-de-software/docverify/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	action := flag.String("action", "up", "Migration action: up, down, version, force")
	version := flag.Int("version", 0, "Target version (for force action)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.PersistenceEnabled() {
		return errors.New("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg.Environment, cfg.LogLevel).With(slog.String("component", "migrate"))

	dbName, err := database.DatabaseName(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	db, err := database.OpenSQL(context.Background(), database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db, dbName)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	logger.Info("running migration command",
		slog.String("database", dbName),
		slog.String("action", *action),
	)

	status, err := migrator.Run(database.Action(*action), *version)
	if err != nil {
		return err
	}

	logger.Info("migration finished",
		slog.Uint64("version", uint64(status.Version)),
		slog.Bool("dirty", status.Dirty),
		slog.Bool("changed", status.Changed),
	)
	if status.Dirty {
		return fmt.Errorf("schema is dirty at version %d; fix it and run -action force -version %d", status.Version, status.Version)
	}
	return nil
}
