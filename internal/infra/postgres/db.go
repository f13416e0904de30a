package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	pgmigrations "quizlet-service/internal/infra/postgres/migrations"
)

const (
	DriverPG  = "pgdriver"
	DriverPGX = "pgx"
)

// Open returns a bun DB over the selected database/sql driver. No connection is made until first use.
func Open(dsn, driver string) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres url not configured")
	}

	var sqldb *sql.DB
	switch driver {
	case "", DriverPG:
		sqldb = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	case DriverPGX:
		var err error
		sqldb, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open pgx: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported postgres driver %q", driver)
	}
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// Migrate applies every pending schema migration.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
