// Package database centralises sqlx connection helpers for deployments
// where the console runs next to the records database instead of the REST
// upstream.  The default driver is go-sql-driver/mysql, which also works
// with MariaDB when configured for the MySQL wire protocol.
//
// Public entry points:
//
//	Open(dsn)                      – helper with conservative pool sizes.
//	OpenWithOptions(ctx, dsn, o)   – fine-grained control.
//
// Both helpers ping the database before returning so callers fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
package database

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Options tunes one connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open returns a *sqlx.DB with sane defaults: 10 max open, 3 idle, and a
// 30-minute connection lifetime.  Suitable for the console's single pool.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(context.Background(), dsn, Options{
		MaxOpenConns:    10,
		MaxIdleConns:    3,
		ConnMaxLifetime: 30 * time.Minute,
	})
}

// OpenWithOptions lets callers tune the pool per deployment.
func OpenWithOptions(ctx context.Context, dsn string, o Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
