package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"quizlet-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	FirstName string    `bun:"first_name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	Email     string    `bun:"email,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Title     string    `bun:"title,notnull"`
	Score     int       `bun:"score,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID        int64        `bun:"id,pk,autoincrement"`
	QuizID    int64        `bun:"quiz_id,notnull"`
	Question  string       `bun:"question,notnull"`
	Score     int          `bun:"score,notnull"`
	CreatedAt time.Time    `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	Options   []*optionRow `bun:"rel:has-many,join:id=question_id"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:options,alias:o"`

	ID         int64  `bun:"id,pk,autoincrement"`
	QuestionID int64  `bun:"question_id,notnull"`
	Option     string `bun:"option_text,notnull"`
	IsCorrect  bool   `bun:"is_correct,notnull"`
}

type statisticRow struct {
	bun.BaseModel `bun:"table:statistics,alias:s"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	QuizID     int64     `bun:"quiz_id,notnull"`
	TotalScore int       `bun:"total_score,notnull"`
	Status     bool      `bun:"status,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	User       *userRow  `bun:"rel:belongs-to,join:user_id=id"`
	Quiz       *quizRow  `bun:"rel:belongs-to,join:quiz_id=id"`
}

type selectedOptionRow struct {
	OptionID      int64 `bun:"option_id"`
	QuestionID    int64 `bun:"question_id"`
	QuizID        int64 `bun:"quiz_id"`
	IsCorrect     bool  `bun:"is_correct"`
	QuestionScore int   `bun:"question_score"`
}

func (r *userRow) toDomain() domain.User {
	return domain.User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

func (r *quizRow) toDomain() domain.Quiz {
	return domain.Quiz{ID: r.ID, Title: r.Title, Score: r.Score, CreatedAt: r.CreatedAt}
}

func (r *optionRow) toDomain() domain.Option {
	return domain.Option{ID: r.ID, QuestionID: r.QuestionID, Option: r.Option, IsCorrect: r.IsCorrect}
}

func (r *questionRow) toDomain() domain.Question {
	q := domain.Question{
		ID:        r.ID,
		QuizID:    r.QuizID,
		Question:  r.Question,
		Score:     r.Score,
		CreatedAt: r.CreatedAt,
		Options:   make([]domain.Option, 0, len(r.Options)),
	}
	for _, opt := range r.Options {
		q.Options = append(q.Options, opt.toDomain())
	}
	return q
}

func (r *statisticRow) toDomain() domain.Statistic {
	s := domain.Statistic{
		ID:         r.ID,
		UserID:     r.UserID,
		QuizID:     r.QuizID,
		TotalScore: r.TotalScore,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.User != nil {
		u := r.User.toDomain()
		s.User = &u
	}
	if r.Quiz != nil {
		q := r.Quiz.toDomain()
		s.Quiz = &q
	}
	return s
}
