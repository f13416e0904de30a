package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0002_unique_statistics.sql
var uniqueStatisticsSQL string

const dropStatisticsIndexesSQL = `DROP INDEX IF EXISTS statistics_rank_idx, statistics_user_quiz_key`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, uniqueStatisticsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, dropStatisticsIndexesSQL)
			return err
		},
	)
}
