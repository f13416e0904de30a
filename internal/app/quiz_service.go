package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"quizlet-service/internal/domain"
	"quizlet-service/internal/logging"
)

// Store abstracts how quiz data is persisted (in-memory, Postgres).
type Store interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, userID int64) (domain.User, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error)
	// CreateQuestion stores the question and its options in a single write.
	CreateQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	// Register creates the user and a pending statistic for quizID atomically.
	// The returned statistic carries User and Quiz.
	Register(ctx context.Context, user domain.User, quizID int64) (domain.Statistic, error)
	SelectedOptions(ctx context.Context, optionIDs []int64) ([]domain.SelectedOption, error)
	// UpsertStatistic completes the (user, quiz) statistic, creating it when absent.
	UpsertStatistic(ctx context.Context, userID, quizID int64, totalScore int) (domain.Statistic, error)
	// ListStatistics returns every statistic joined with User and Quiz in rank order.
	ListStatistics(ctx context.Context) ([]domain.Statistic, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID int64) (domain.Quiz, error)
}

// QuizService contains the core quiz use cases.
type QuizService struct {
	store    Store
	quizzes  QuizRepository
	notifier Notifier
}

func NewQuizService(store Store, quizzes QuizRepository, notifier Notifier) *QuizService {
	if quizzes == nil {
		quizzes = store
	}
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	return &QuizService{store: store, quizzes: quizzes, notifier: notifier}
}

type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	QuizID    int64  `json:"quizId"`
}

type CreateQuizInput struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

type OptionInput struct {
	Option    string `json:"option"`
	IsCorrect bool   `json:"isCorrect"`
}

type CreateQuestionInput struct {
	Question string        `json:"question"`
	Score    int           `json:"score"`
	Options  []OptionInput `json:"options"`
	QuizID   int64         `json:"quizId"`
}

type SubmitInput struct {
	Answers []domain.Answer `json:"answers"`
	UserID  int64           `json:"userId"`
	QuizID  int64           `json:"quizId"`
}

func (s *QuizService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}

// ListQuestions returns the questions of a quiz with their options.
func (s *QuizService) ListQuestions(ctx context.Context, quizID int64) ([]domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(ctx, quizID)
}

// ListRanks returns every statistic, highest score first, newest first on ties.
func (s *QuizService) ListRanks(ctx context.Context) ([]domain.Statistic, error) {
	return s.store.ListStatistics(ctx)
}

// Register creates a participant for a quiz together with a pending statistic.
func (s *QuizService) Register(ctx context.Context, in RegisterInput) (domain.Statistic, error) {
	user := domain.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
	}
	switch {
	case user.FirstName == "":
		return domain.Statistic{}, invalid("firstName is required")
	case user.LastName == "":
		return domain.Statistic{}, invalid("lastName is required")
	case user.Email == "":
		return domain.Statistic{}, invalid("email is required")
	case in.QuizID <= 0:
		return domain.Statistic{}, invalid("quizId is required")
	}

	stat, err := s.store.Register(ctx, user, in.QuizID)
	if err != nil {
		return domain.Statistic{}, err
	}
	logging.WithContext(ctx).WithFields(logrus.Fields{
		"user_id": stat.UserID,
		"quiz_id": stat.QuizID,
	}).Info("participant registered")

	s.publish(ctx, domain.EventUserJoined, stat)
	return stat, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, in CreateQuizInput) (domain.Quiz, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Quiz{}, invalid("title is required")
	}
	if in.Score < 0 {
		return domain.Quiz{}, invalid("score must not be negative")
	}
	return s.store.CreateQuiz(ctx, domain.Quiz{Title: title, Score: in.Score})
}

// CreateQuestion stores a question with its initial options. A missing score defaults to 0.
func (s *QuizService) CreateQuestion(ctx context.Context, in CreateQuestionInput) (domain.Question, error) {
	text := strings.TrimSpace(in.Question)
	if text == "" {
		return domain.Question{}, invalid("question is required")
	}
	if in.QuizID <= 0 {
		return domain.Question{}, invalid("quizId is required")
	}
	if in.Score < 0 {
		return domain.Question{}, invalid("score must not be negative")
	}

	question := domain.Question{
		QuizID:   in.QuizID,
		Question: text,
		Score:    in.Score,
		Options:  make([]domain.Option, 0, len(in.Options)),
	}
	for i, opt := range in.Options {
		optText := strings.TrimSpace(opt.Option)
		if optText == "" {
			return domain.Question{}, invalid(fmt.Sprintf("options[%d].option is required", i))
		}
		question.Options = append(question.Options, domain.Option{Option: optText, IsCorrect: opt.IsCorrect})
	}
	return s.store.CreateQuestion(ctx, question)
}

// SubmitAnswers scores the selected options and records the result as the single
// statistic for (user, quiz). Resubmission overwrites the previous score.
func (s *QuizService) SubmitAnswers(ctx context.Context, in SubmitInput) (domain.Statistic, error) {
	if in.UserID <= 0 {
		return domain.Statistic{}, invalid("userId is required")
	}
	if in.QuizID <= 0 {
		return domain.Statistic{}, invalid("quizId is required")
	}

	quiz, err := s.quizzes.GetQuiz(ctx, in.QuizID)
	if err != nil {
		return domain.Statistic{}, err
	}
	user, err := s.store.GetUser(ctx, in.UserID)
	if err != nil {
		return domain.Statistic{}, err
	}

	var selected []domain.SelectedOption
	if ids := optionIDs(in.Answers); len(ids) > 0 {
		selected, err = s.store.SelectedOptions(ctx, ids)
		if err != nil {
			return domain.Statistic{}, err
		}
	}
	total := Score(quiz.ID, selected)

	stat, err := s.store.UpsertStatistic(ctx, user.ID, quiz.ID, total)
	if err != nil {
		return domain.Statistic{}, err
	}
	stat.User = &user
	stat.Quiz = &quiz

	logging.WithContext(ctx).WithFields(logrus.Fields{
		"user_id":     user.ID,
		"quiz_id":     quiz.ID,
		"total_score": total,
	}).Info("answers scored")

	s.publish(ctx, domain.EventUserAnswer, stat)
	return stat, nil
}

// Relay rebroadcasts a free-form client message to every connected client.
func (s *QuizService) Relay(ctx context.Context, payload json.RawMessage) {
	s.publish(ctx, domain.EventMessage, payload)
}

func (s *QuizService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.notifier.Publish(ctx, domain.Event{Type: eventType, Payload: payload}); err != nil {
		logging.WithContext(ctx).WithError(err).WithField("event", eventType).Warn("broadcast failed")
	}
}

func optionIDs(answers []domain.Answer) []int64 {
	ids := make([]int64, 0, len(answers))
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.OptionID]; dup || a.OptionID <= 0 {
			continue
		}
		seen[a.OptionID] = struct{}{}
		ids = append(ids, a.OptionID)
	}
	return ids
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}
