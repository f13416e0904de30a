package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizlet-service/internal/infra/memory"
)

func TestRootRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["start"])
	assert.True(t, names["migrate"])
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("port"))
}

func TestMigrateRequiresPostgres(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	err := runMigrations(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedSampleQuiz(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, seedSampleQuiz(ctx, store))

	quizzes, err := store.ListQuizzes(ctx)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)

	questions, err := store.ListQuestions(ctx, quizzes[0].ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Len(t, questions[0].Options, 3)
}
