// Command migrate applies the schema of one service's database. Each service
// owns its own directory under migrations/.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cassiomorais/gozon/internal/infrastructure/config"
	"github.com/cassiomorais/gozon/internal/infrastructure/observability"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
)

type options struct {
	service string
	action  string
	steps   int
	dbURL   string
	root    string
}

func main() {
	var o options
	flag.StringVar(&o.service, "service", config.ServiceOrders, "orders or payments")
	flag.StringVar(&o.action, "direction", "up", "up, down or version")
	flag.IntVar(&o.steps, "steps", 0, "apply only this many migrations (0 means all)")
	flag.StringVar(&o.dbURL, "db", "", "database URL, read from the service config when empty")
	flag.StringVar(&o.root, "path", "migrations", "directory holding one folder per service")
	flag.Parse()

	logger := observability.InitLogger("info", os.Stderr).With().
		Str("service", o.service).Str("direction", o.action).Logger()

	if err := run(o, logger); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
}

func run(o options, logger zerolog.Logger) error {
	if o.dbURL == "" {
		cfg, err := config.Load(o.service)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		o.dbURL = cfg.Database.DatabaseURL()
	}

	m, err := migrate.New("file://"+filepath.Join(o.root, o.service), o.dbURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	switch o.action {
	case "up":
		if o.steps > 0 {
			err = m.Steps(o.steps)
		} else {
			err = m.Up()
		}
	case "down":
		if o.steps > 0 {
			err = m.Steps(-o.steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		return fmt.Errorf("unknown direction %q", o.action)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("schema is current")
	return nil
}
