// Package database 提供 PostgreSQL 连接与排班记录表结构
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/paiban/dutyroster/internal/config"
	"github.com/paiban/dutyroster/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

// DB 数据库连接封装，记录慢语句
type DB struct {
	*sql.DB
	slow time.Duration
	log  *zerolog.Logger
}

// New 打开连接并检查可用性
func New(cfg *config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	db := Wrap(conn, cfg.SlowQuery)
	db.log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接成功")
	return db, nil
}

// Wrap 包装已打开的连接，slow<=0 时不记录慢语句
func Wrap(conn *sql.DB, slow time.Duration) *DB {
	return &DB{DB: conn, slow: slow, log: logger.NewComponentLogger("database").Logger()}
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	db.log.Info().Msg("关闭数据库连接")
	return db.DB.Close()
}

// Health 健康检查
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// ExecContext 执行语句
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	db.observe(ctx, query, time.Since(start))
	return result, err
}

// QueryContext 执行查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	db.observe(ctx, query, time.Since(start))
	return rows, err
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := db.DB.QueryRowContext(ctx, query, args...)
	db.observe(ctx, query, time.Since(start))
	return row
}

func (db *DB) observe(ctx context.Context, query string, d time.Duration) {
	if db.slow <= 0 || d < db.slow {
		return
	}
	logger.WithContext(ctx).Warn().
		Str("component", "database").
		Str("query", truncateQuery(query)).
		Dur("duration", d).
		Msg("慢SQL查询")
}

// Transaction 在事务中执行 fn，fn 返回错误或 panic 时回滚
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

// migrations 按顺序执行的建表语句
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS duty_runs (
		id          UUID PRIMARY KEY,
		year        INTEGER NOT NULL,
		month       INTEGER NOT NULL,
		status      TEXT NOT NULL,
		level       INTEGER NOT NULL,
		objective   INTEGER NOT NULL DEFAULT 0,
		levels      BIGINT[] NOT NULL DEFAULT '{}',
		notes       TEXT[] NOT NULL DEFAULT '{}',
		payload     JSONB,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_duty_runs_month ON duty_runs (year, month)`,
	`CREATE INDEX IF NOT EXISTS idx_duty_runs_created ON duty_runs (created_at DESC)`,
}

// Migrate 在一个事务中创建所需的表与索引
func (db *DB) Migrate(ctx context.Context) error {
	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range migrations {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("执行建表语句失败 (%s): %w", firstLine(stmt), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	db.log.Info().Int("statements", len(migrations)).Msg("数据表已就绪")
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

// truncateQuery 截断长查询
func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
