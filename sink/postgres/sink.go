package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Konsultn-Engineering/rowkit/schema"
)

// Sink is a pooled PostgreSQL row writer.
type Sink struct {
	config Config
	pool   *pgxpool.Pool
}

// Connect opens a pooled connection for the configuration, retrying with
// exponential backoff when retry behavior is configured.
func Connect(ctx context.Context, cfg Config) (*Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	var pool *pgxpool.Pool
	var err error
	if cfg.Retry != nil {
		pool, err = retryConnect(ctx, cfg.Retry, cfg.connect)
		if err != nil {
			return nil, fmt.Errorf("failed to connect after %d retries: %w", cfg.Retry.MaxRetries, err)
		}
	} else {
		pool, err = cfg.connect(ctx)
		if err != nil {
			return nil, err
		}
	}
	return &Sink{config: cfg, pool: pool}, nil
}

func (c Config) connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if c.Pool.MaxConns > 0 {
		poolCfg.MaxConns = c.Pool.MaxConns
	}
	if c.Pool.MinConns > 0 {
		poolCfg.MinConns = c.Pool.MinConns
	}
	if c.Pool.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = c.Pool.MaxConnLifetime
	}
	if c.Pool.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = c.Pool.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func retryConnect(ctx context.Context, opts *RetryConfig, connect func(context.Context) (*pgxpool.Pool, error)) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	delay := opts.BaseDelay
	if delay == 0 {
		delay = time.Second
	}

	for i := 0; i <= opts.MaxRetries; i++ {
		pool, err = connect(ctx)
		if err == nil {
			return pool, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay *= 2
			if opts.MaxDelay > 0 && delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
	}
	return nil, err
}

// Write inserts the rows into the table as one batch. All rows must share
// a structurally equal schema; the first row's schema defines the column
// list.
func (s *Sink) Write(ctx context.Context, table string, rows []*schema.Row) error {
	if len(rows) == 0 {
		return nil
	}

	rowType := rows[0].Schema()
	for i, r := range rows[1:] {
		if !rowType.Equal(r.Schema()) {
			return fmt.Errorf("row %d schema differs from batch schema", i+1)
		}
	}

	query := insertSQL(table, rowType)
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, r.Values()...)
	}

	results := s.pool.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return results.Close()
}

// Close releases the underlying pool.
func (s *Sink) Close() {
	s.pool.Close()
}

func insertSQL(table string, rowType *schema.Schema) string {
	cols := make([]string, rowType.NumFields())
	placeholders := make([]string, rowType.NumFields())
	for i := 0; i < rowType.NumFields(); i++ {
		cols[i] = pgx.Identifier{rowType.Field(i).Name}.Sanitize()
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
}

// TableNameFor derives the sink table name for a record type using the
// default naming strategy (pluralized snake_case). Pointer types resolve
// through their element type.
func TableNameFor(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return schema.DefaultNamingStrategy().TableName(t.Name())
}
