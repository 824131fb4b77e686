package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration found in dir of fsys.
func (p *Postgres) Migrate(ctx context.Context, fsys fs.FS, dir string) error {
	return p.withGoose(fsys, func() error {
		if err := goose.UpContext(ctx, p.DB, dir); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		return nil
	})
}

// Reset rolls back every applied migration.
func (p *Postgres) Reset(ctx context.Context, fsys fs.FS, dir string) error {
	return p.withGoose(fsys, func() error {
		if err := goose.ResetContext(ctx, p.DB, dir); err != nil {
			return fmt.Errorf("migrate reset: %w", err)
		}
		return nil
	})
}

func (p *Postgres) withGoose(fsys fs.FS, fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: p.log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn()
}

type gooseLogger struct {
	log *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}
