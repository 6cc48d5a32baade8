// Package postgres owns the shared database connection lifecycle.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	defaultPingTimeout   = 5 * time.Second
	defaultSlowThreshold = 200 * time.Millisecond
)

type settings struct {
	logger        *slog.Logger
	pingTimeout   time.Duration
	slowThreshold time.Duration
}

// Option tunes how Connect opens the database.
type Option func(*settings)

// WithLogger routes GORM's query log through the given slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithSlowQueryThreshold overrides the elapsed time above which a query is
// logged as slow.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *settings) { s.slowThreshold = d }
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string, opts ...Option) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	cfg := settings{pingTimeout: defaultPingTimeout, slowThreshold: defaultSlowThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	gormCfg := &gorm.Config{}
	if cfg.logger != nil {
		gormCfg.Logger = &slogLogger{logger: cfg.logger, slowThreshold: cfg.slowThreshold}
	}
	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// slogLogger adapts GORM's logger interface onto slog. Record-not-found
// errors are suppressed: repositories translate those into domain sentinels.
type slogLogger struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

func (l *slogLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
}

func (l *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
}

func (l *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
}

func (l *slogLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.ErrorContext(ctx, "query failed",
			slog.String("error", err.Error()), slog.String("sql", sql), slog.Int64("rows", rows), slog.Duration("elapsed", elapsed))
	case l.slowThreshold > 0 && elapsed >= l.slowThreshold:
		sql, rows := fc()
		l.logger.WarnContext(ctx, "slow query",
			slog.String("sql", sql), slog.Int64("rows", rows), slog.Duration("elapsed", elapsed))
	}
}
