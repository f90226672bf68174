// Package database wraps a Postgres connection pool (driven by
// github.com/lib/pq) for the scenario fixture store and any other
// repository that needs to issue SQL against the solver's backing store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paiban/paiban/internal/config"
	"github.com/paiban/paiban/pkg/logger"

	_ "github.com/lib/pq" // Postgres 驱动
)

const (
	// slowQueryThreshold is the cutoff above which a query gets logged at
	// warn level -- scenario payloads are JSONB blobs, so a slow query here
	// usually means a fixture row has grown large, not a missing index.
	slowQueryThreshold = 100 * time.Millisecond
	// maxLoggedQueryLen bounds how much SQL text ends up in a single log
	// line.
	maxLoggedQueryLen = 200
)

// DB wraps *sql.DB with the connection settings and slow-query logging the
// rest of the service expects from it.
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New opens a pooled connection to Postgres and verifies it with a ping
// before returning.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	// 连接池参数
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接已建立")

	return &DB{DB: db, cfg: cfg}, nil
}

// Close shuts down the underlying pool.
func (db *DB) Close() error {
	if db.DB != nil {
		logger.Info().Msg("关闭数据库连接")
		return db.DB.Close()
	}
	return nil
}

// Health reports whether the pool can still reach Postgres.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction runs fn inside a transaction, committing on success and
// rolling back on error or panic.
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("事务回滚失败: %v (原始错误: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}

	return nil
}

// Stats exposes the pool's connection statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext runs a write query, logging it if it ran slower than
// slowQueryThreshold.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if duration > slowQueryThreshold {
		logger.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("慢查询")
	}

	return result, err
}

// QueryContext runs a multi-row query, logging it if it ran slower than
// slowQueryThreshold.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	duration := time.Since(start)

	if duration > slowQueryThreshold {
		logger.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("慢查询")
	}

	return rows, err
}

// QueryRowContext runs a single-row query.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

func truncateQuery(query string) string {
	if len(query) > maxLoggedQueryLen {
		return query[:maxLoggedQueryLen] + "..."
	}
	return query
}
