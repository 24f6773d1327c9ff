package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/jackc/pgx/v4/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// InitDB applies pending migrations over migrationsConn and opens the pgx pool.
func InitDB(ctx context.Context, config *pgxpool.Config, migrationsConn string) (*pgxpool.Pool, error) {
	if err := UpMigrations(migrationsConn); err != nil {
		return nil, err
	}

	pgPool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "connect pgx pool")
	}

	if err := pgPool.Ping(ctx); err != nil {
		pgPool.Close()
		return nil, errors.Wrap(err, "ping database")
	}

	return pgPool, nil
}

func UpMigrations(migrationsConn string) error {
	db, err := sql.Open("postgres", migrationsConn)
	if err != nil {
		return errors.Wrap(err, "open migrations connection")
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return errors.Wrap(err, "apply migrations")
	}

	return nil
}
