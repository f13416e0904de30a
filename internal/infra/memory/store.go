package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizlet-service/internal/app"
	"quizlet-service/internal/domain"
)

// Store is an in-memory implementation of app.Store.
// Every operation holds the store lock, so find-or-create of statistics is atomic.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users      map[int64]domain.User
	quizzes    map[int64]domain.Quiz
	questions  map[int64]domain.Question
	options    map[int64]domain.Option
	statistics map[int64]domain.Statistic
	statByKey  map[statKey]int64

	lastUser, lastQuiz, lastQuestion, lastOption, lastStatistic int64
}

type statKey struct {
	userID int64
	quizID int64
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock allows deterministic timestamps in tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		now:        now,
		users:      make(map[int64]domain.User),
		quizzes:    make(map[int64]domain.Quiz),
		questions:  make(map[int64]domain.Question),
		options:    make(map[int64]domain.Option),
		statistics: make(map[int64]domain.Statistic),
		statByKey:  make(map[statKey]int64),
	}
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) GetUser(_ context.Context, userID int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, q := range s.quizzes {
		quizzes = append(quizzes, q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (s *Store) GetQuiz(_ context.Context, quizID int64) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q, ok := s.quizzes[quizID]; ok {
		return q, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQuiz++
	quiz.ID = s.lastQuiz
	quiz.CreatedAt = s.now()
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID int64) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.QuizID == quizID {
			q.Options = append([]domain.Option(nil), q.Options...)
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (s *Store) CreateQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[question.QuizID]; !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}

	s.lastQuestion++
	question.ID = s.lastQuestion
	question.CreatedAt = s.now()
	options := make([]domain.Option, 0, len(question.Options))
	for _, opt := range question.Options {
		s.lastOption++
		opt.ID = s.lastOption
		opt.QuestionID = question.ID
		s.options[opt.ID] = opt
		options = append(options, opt)
	}
	question.Options = options
	s.questions[question.ID] = question
	return question, nil
}

func (s *Store) Register(_ context.Context, user domain.User, quizID int64) (domain.Statistic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Statistic{}, domain.ErrQuizNotFound
	}

	now := s.now()
	s.lastUser++
	user.ID = s.lastUser
	user.CreatedAt = now
	s.users[user.ID] = user

	stat := s.upsertLocked(user.ID, quizID, 0, false)
	stat.User = &user
	stat.Quiz = &quiz
	return stat, nil
}

func (s *Store) SelectedOptions(_ context.Context, optionIDs []int64) ([]domain.SelectedOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	selected := make([]domain.SelectedOption, 0, len(optionIDs))
	seen := make(map[int64]struct{}, len(optionIDs))
	for _, id := range optionIDs {
		opt, ok := s.options[id]
		if _, dup := seen[id]; !ok || dup {
			continue
		}
		seen[id] = struct{}{}
		question := s.questions[opt.QuestionID]
		selected = append(selected, domain.SelectedOption{
			OptionID:      opt.ID,
			QuestionID:    question.ID,
			QuizID:        question.QuizID,
			IsCorrect:     opt.IsCorrect,
			QuestionScore: question.Score,
		})
	}
	return selected, nil
}

func (s *Store) UpsertStatistic(_ context.Context, userID, quizID int64, totalScore int) (domain.Statistic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domain.Statistic{}, domain.ErrUserNotFound
	}
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.Statistic{}, domain.ErrQuizNotFound
	}
	return s.upsertLocked(userID, quizID, totalScore, true), nil
}

func (s *Store) ListStatistics(_ context.Context) ([]domain.Statistic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := make([]domain.Statistic, 0, len(s.statistics))
	for _, stat := range s.statistics {
		user := s.users[stat.UserID]
		quiz := s.quizzes[stat.QuizID]
		stat.User = &user
		stat.Quiz = &quiz
		stats = append(stats, stat)
	}
	app.SortRanks(stats)
	return stats, nil
}

func (s *Store) upsertLocked(userID, quizID int64, totalScore int, status bool) domain.Statistic {
	now := s.now()
	key := statKey{userID: userID, quizID: quizID}
	if id, ok := s.statByKey[key]; ok {
		stat := s.statistics[id]
		stat.TotalScore = totalScore
		stat.Status = status
		stat.UpdatedAt = now
		s.statistics[id] = stat
		return stat
	}

	s.lastStatistic++
	stat := domain.Statistic{
		ID:         s.lastStatistic,
		UserID:     userID,
		QuizID:     quizID,
		TotalScore: totalScore,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.statistics[stat.ID] = stat
	s.statByKey[key] = stat.ID
	return stat
}
