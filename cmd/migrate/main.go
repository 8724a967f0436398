// Command migrate manages the postgres store schema by hand.
//
//	migrate [-database-url URL] up|down|version|force N
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/saransh1220/filelink/internal/modules/links/infrastructure/postgres"
	"github.com/saransh1220/filelink/internal/shared/infrastructure/config"
	"github.com/saransh1220/filelink/internal/shared/logger"
	"github.com/saransh1220/filelink/pkg/migration"
	"go.uber.org/zap"
)

type migrator interface {
	Up() error
	Down() error
	Force(version int) error
	Version() (uint, bool, error)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	appLogger, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	newRunner := func(dbURL string) migrator {
		return migration.NewRunner(&migration.Config{
			Source:      postgres.Migrations,
			Path:        "migrations",
			DatabaseURL: dbURL,
			Logger:      appLogger,
		})
	}

	if err := run(os.Args[1:], cfg.Database.URL(), newRunner, os.Stdout); err != nil {
		appLogger.Error("migrate failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(args []string, defaultURL string, newRunner func(string) migrator, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbURL := fs.String("database-url", defaultURL, "postgres connection URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("command required: up, down, version or force N")
	}

	r := newRunner(*dbURL)
	switch cmd := fs.Arg(0); cmd {
	case "up":
		return r.Up()
	case "down":
		return r.Down()
	case "force":
		if fs.NArg() != 2 {
			return errors.New("force needs a version")
		}
		version, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", fs.Arg(1), err)
		}
		return r.Force(version)
	case "version":
		version, dirty, err := r.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
