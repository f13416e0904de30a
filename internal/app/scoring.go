package app

import (
	"sort"

	"quizlet-service/internal/domain"
)

// Score sums the parent question score of every distinct selected option that is marked
// correct and belongs to quizID. Incorrect selections contribute nothing, and several correct
// options of the same question each add the question score.
func Score(quizID int64, selected []domain.SelectedOption) int {
	total := 0
	seen := make(map[int64]struct{}, len(selected))
	for _, opt := range selected {
		if _, dup := seen[opt.OptionID]; dup {
			continue
		}
		seen[opt.OptionID] = struct{}{}
		if opt.QuizID != quizID || !opt.IsCorrect {
			continue
		}
		total += opt.QuestionScore
	}
	return total
}

// SortRanks orders statistics by total score descending, then most recently created first.
func SortRanks(stats []domain.Statistic) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].TotalScore != stats[j].TotalScore {
			return stats[i].TotalScore > stats[j].TotalScore
		}
		if !stats[i].CreatedAt.Equal(stats[j].CreatedAt) {
			return stats[i].CreatedAt.After(stats[j].CreatedAt)
		}
		return stats[i].ID > stats[j].ID
	})
}
