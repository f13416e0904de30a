package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsRegistered(t *testing.T) {
	sorted := Migrations.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "2026101801", sorted[0].Name)
	assert.Equal(t, "2026101802", sorted[1].Name)
}

// Rolling back the index migration must leave the schema exactly as the
// table migration created it.
func TestStatisticsIndexesOwnedBySecondMigration(t *testing.T) {
	for _, index := range []string{"statistics_user_quiz_key", "statistics_rank_idx"} {
		assert.NotContains(t, createQuizSchemaSQL, index)
		assert.Contains(t, uniqueStatisticsSQL, index)
		assert.Contains(t, dropStatisticsIndexesSQL, index)
	}
	assert.True(t, strings.Contains(uniqueStatisticsSQL, "CREATE UNIQUE INDEX IF NOT EXISTS statistics_user_quiz_key ON statistics (user_id, quiz_id)"))
}
