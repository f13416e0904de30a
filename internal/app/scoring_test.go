package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quizlet-service/internal/domain"
)

func TestScore(t *testing.T) {
	const quizID = 1
	correct := domain.SelectedOption{OptionID: 1, QuestionID: 1, QuizID: quizID, IsCorrect: true, QuestionScore: 10}
	wrong := domain.SelectedOption{OptionID: 2, QuestionID: 1, QuizID: quizID, QuestionScore: 10}
	secondCorrect := domain.SelectedOption{OptionID: 3, QuestionID: 1, QuizID: quizID, IsCorrect: true, QuestionScore: 10}
	otherQuestion := domain.SelectedOption{OptionID: 4, QuestionID: 2, QuizID: quizID, IsCorrect: true, QuestionScore: 3}
	foreign := domain.SelectedOption{OptionID: 5, QuestionID: 9, QuizID: 2, IsCorrect: true, QuestionScore: 50}

	tests := []struct {
		name     string
		selected []domain.SelectedOption
		want     int
	}{
		{name: "nothing selected", want: 0},
		{name: "correct option", selected: []domain.SelectedOption{correct}, want: 10},
		{name: "incorrect option scores zero", selected: []domain.SelectedOption{wrong}, want: 0},
		{name: "incorrect does not subtract", selected: []domain.SelectedOption{correct, wrong}, want: 10},
		{name: "several questions", selected: []domain.SelectedOption{correct, otherQuestion}, want: 13},
		{name: "multiple correct options each count", selected: []domain.SelectedOption{correct, secondCorrect}, want: 20},
		{name: "duplicate selection counts once", selected: []domain.SelectedOption{correct, correct}, want: 10},
		{name: "options of other quizzes ignored", selected: []domain.SelectedOption{foreign, otherQuestion}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(quizID, tt.selected))
		})
	}
}

func TestSortRanks(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stats := []domain.Statistic{
		{ID: 1, TotalScore: 5, CreatedAt: base},
		{ID: 2, TotalScore: 9, CreatedAt: base},
		{ID: 3, TotalScore: 5, CreatedAt: base.Add(time.Minute)},
		{ID: 4, TotalScore: 0, CreatedAt: base.Add(time.Hour)},
		{ID: 5, TotalScore: 5, CreatedAt: base.Add(time.Minute)},
	}

	SortRanks(stats)

	ids := make([]int64, 0, len(stats))
	for _, s := range stats {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{2, 5, 3, 1, 4}, ids)
}
