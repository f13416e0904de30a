package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quizlet-service/internal/domain"
)

// Store is the Postgres implementation of app.Store.
type Store struct {
	db  *bun.DB
	now func() time.Time
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("u.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("u.id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("qz.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for i := range rows {
		quizzes = append(quizzes, rows[i].toDomain())
	}
	return quizzes, nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error) {
	row, err := getQuiz(ctx, s.db, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row := &quizRow{Title: quiz.Title, Score: quiz.Score}
	if _, err := s.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().
		Model(&rows).
		Relation("Options", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("o.id ASC")
		}).
		Where("q.quiz_id = ?", quizID).
		OrderExpr("q.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, rows[i].toDomain())
	}
	return questions, nil
}

// CreateQuestion inserts the question and its options in one transaction.
func (s *Store) CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	row := &questionRow{QuizID: question.QuizID, Question: question.Question, Score: question.Score}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := getQuiz(ctx, tx, question.QuizID); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		if len(question.Options) == 0 {
			return nil
		}
		options := make([]*optionRow, 0, len(question.Options))
		for _, opt := range question.Options {
			options = append(options, &optionRow{QuestionID: row.ID, Option: opt.Option, IsCorrect: opt.IsCorrect})
		}
		if _, err := tx.NewInsert().Model(&options).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert options: %w", err)
		}
		row.Options = options
		return nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return row.toDomain(), nil
}

// Register creates the user and its pending statistic atomically; nothing is written
// when the quiz does not exist.
func (s *Store) Register(ctx context.Context, user domain.User, quizID int64) (domain.Statistic, error) {
	var stat *statisticRow
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		quiz, err := getQuiz(ctx, tx, quizID)
		if err != nil {
			return err
		}

		u := &userRow{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
		if _, err := tx.NewInsert().Model(u).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		stat = &statisticRow{UserID: u.ID, QuizID: quiz.ID, UpdatedAt: s.now()}
		if _, err := tx.NewInsert().Model(stat).Returning("*").Exec(ctx); err != nil {
			return fmt.Errorf("insert statistic: %w", err)
		}
		stat.User = u
		stat.Quiz = quiz
		return nil
	})
	if err != nil {
		return domain.Statistic{}, err
	}
	return stat.toDomain(), nil
}

func (s *Store) SelectedOptions(ctx context.Context, optionIDs []int64) ([]domain.SelectedOption, error) {
	if len(optionIDs) == 0 {
		return nil, nil
	}
	var rows []selectedOptionRow
	err := s.db.NewSelect().
		TableExpr("options AS o").
		ColumnExpr("o.id AS option_id").
		ColumnExpr("o.question_id").
		ColumnExpr("o.is_correct").
		ColumnExpr("q.quiz_id").
		ColumnExpr("q.score AS question_score").
		Join("JOIN questions AS q ON q.id = o.question_id").
		Where("o.id IN (?)", bun.In(optionIDs)).
		OrderExpr("o.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("select options: %w", err)
	}
	selected := make([]domain.SelectedOption, 0, len(rows))
	for _, r := range rows {
		selected = append(selected, domain.SelectedOption{
			OptionID:      r.OptionID,
			QuestionID:    r.QuestionID,
			QuizID:        r.QuizID,
			IsCorrect:     r.IsCorrect,
			QuestionScore: r.QuestionScore,
		})
	}
	return selected, nil
}

// UpsertStatistic relies on the unique (user_id, quiz_id) index, so concurrent first
// submissions converge on one row.
func (s *Store) UpsertStatistic(ctx context.Context, userID, quizID int64, totalScore int) (domain.Statistic, error) {
	row := &statisticRow{
		UserID:     userID,
		QuizID:     quizID,
		TotalScore: totalScore,
		Status:     true,
		UpdatedAt:  s.now(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id, quiz_id) DO UPDATE").
		Set("total_score = EXCLUDED.total_score").
		Set("status = EXCLUDED.status").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Statistic{}, fmt.Errorf("upsert statistic: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) ListStatistics(ctx context.Context) ([]domain.Statistic, error) {
	var rows []statisticRow
	err := s.db.NewSelect().
		Model(&rows).
		Relation("User").
		Relation("Quiz").
		OrderExpr("s.total_score DESC").
		OrderExpr("s.created_at DESC").
		OrderExpr("s.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	stats := make([]domain.Statistic, 0, len(rows))
	for i := range rows {
		stats = append(stats, rows[i].toDomain())
	}
	return stats, nil
}

func getQuiz(ctx context.Context, db bun.IDB, quizID int64) (*quizRow, error) {
	row := new(quizRow)
	err := db.NewSelect().Model(row).Where("qz.id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return row, nil
}
