// Package app wires the configured components shared by the command line tool and the server.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/config"
	"github.com/garyjia/invoice-filler/internal/generator"
	"github.com/garyjia/invoice-filler/internal/pdf"
	"github.com/garyjia/invoice-filler/internal/repository"
	"github.com/garyjia/invoice-filler/pkg/database"
)

// App holds the application-wide dependencies
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *database.DB // nil when the history is disabled
	History   *repository.GeneratedInvoiceRepository
	Backend   *pdf.Backend
	Generator *generator.Generator
}

// Option configures the generator built by New
type Option = generator.Option

// New builds the application from cfg. The history database is opened and
// migrated only when database.enabled is set.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Database.Enabled {
		if err := a.openHistory(ctx); err != nil {
			return nil, err
		}
		opts = append([]Option{generator.WithRecorder(a.History)}, opts...)
	}

	a.Backend = pdf.NewBackend(nil, cfg.Output.TempDir, logger)
	a.Generator = generator.New(cfg.ToGeneratorConfig(), a.Backend, a.Backend.Metrics(), logger, opts...)

	return a, nil
}

func (a *App) openHistory(ctx context.Context) error {
	db, err := database.New(a.Config.ToDatabaseConfig(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}

	migrator := database.NewMigrator(db, a.Logger)
	if dir := a.Config.Database.MigrationsDir; dir != "" {
		err = migrator.RunMigrationsDir(ctx, dir)
	} else {
		err = migrator.RunMigrations(ctx, database.EmbeddedMigrations())
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	a.DB = db
	a.History = repository.NewGeneratedInvoiceRepository(db.DB, a.Logger)
	return nil
}

// Close releases the history database
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
