package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultMaxPoolSize     = 10
	defaultConnAttempts    = 10
	defaultConnTimeout     = time.Second
	defaultConnMaxLifetime = time.Hour
)

type Postgres struct {
	maxPoolSize     int
	connAttempts    int
	connTimeout     time.Duration
	connMaxLifetime time.Duration

	DB  *sql.DB
	log *slog.Logger
}

// New opens the pool and pings it, retrying while the server is not
// reachable yet.
func New(ctx context.Context, dbURL string, log *slog.Logger, opts ...Option) (*Postgres, error) {
	if dbURL == "" {
		return nil, errors.New("database url cannot be empty")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	pg := &Postgres{
		maxPoolSize:     defaultMaxPoolSize,
		connAttempts:    defaultConnAttempts,
		connTimeout:     defaultConnTimeout,
		connMaxLifetime: defaultConnMaxLifetime,
		log:             log,
	}

	for _, opt := range opts {
		opt(pg)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetConnMaxLifetime(pg.connMaxLifetime)
	db.SetMaxOpenConns(pg.maxPoolSize)

	for attempts := pg.connAttempts; ; {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		attempts--
		if attempts <= 0 {
			db.Close()
			log.Error("failed to connect to database", slog.Any("error", err))
			return nil, fmt.Errorf("ping database: %w", err)
		}
		log.Info("postgres is trying to connect", slog.Int("attempts left", attempts))
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(pg.connTimeout):
		}
	}

	pg.DB = db
	return pg, nil
}

func (p *Postgres) Close() {
	if err := p.DB.Close(); err != nil {
		p.log.Error("failed to close database", slog.Any("error", err))
	}
}
