package root

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/horia141/jupiter-sub011/internal/config"
	"github.com/horia141/jupiter-sub011/internal/engine"
	"github.com/horia141/jupiter-sub011/internal/logging"
	"github.com/horia141/jupiter-sub011/internal/storage"
	"github.com/horia141/jupiter-sub011/internal/ui"
)

func openDB(ctx context.Context) (*sql.DB, zerolog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log, logCleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		logCleanup()
		return nil, zerolog.Nop(), nil, err
	}
	cleanup := func() {
		_ = db.Close()
		logCleanup()
	}
	return db, log, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	db, log, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := engine.New(db, log,
		engine.WithReporter(consoleReporter{}),
		engine.WithSearcher(engine.NewSQLSearcher(db)))
	return svc, cleanup, nil
}

// openQuietService skips the console reporter; the TUI owns the screen.
func openQuietService(ctx context.Context) (*engine.Service, func(), error) {
	db, log, cleanup, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(db, log, engine.WithSearcher(engine.NewSQLSearcher(db))), cleanup, nil
}

// consoleReporter echoes entity transitions as they happen, matching the
// web app's progress toasts.
type consoleReporter struct{}

func (consoleReporter) MarkCreated(_ context.Context, summary engine.EntitySummary) {
	fmt.Fprintf(os.Stderr, "%s created %s %d %s\n", ui.IconDone, summary.Kind, summary.Ref, ui.Muted.Render(summary.Name))
}

func (consoleReporter) MarkUpdated(_ context.Context, summary engine.EntitySummary) {
	fmt.Fprintf(os.Stderr, "%s updated %s %d %s\n", ui.IconGear, summary.Kind, summary.Ref, ui.Muted.Render(summary.Name))
}

func (consoleReporter) MarkArchived(_ context.Context, summary engine.EntitySummary) {
	fmt.Fprintf(os.Stderr, "%s archived %s %d %s\n", ui.IconWarn, summary.Kind, summary.Ref, ui.Muted.Render(summary.Name))
}
