package domain

import "time"

// User is a quiz participant. A new User is created for every registration.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quiz is a named collection of questions. Score is the author-declared total/pass threshold
// and plays no part in scoring.
type Quiz struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// Question belongs to exactly one quiz and awards Score for every correct option selected.
type Question struct {
	ID        int64     `json:"id"`
	QuizID    int64     `json:"quizId"`
	Question  string    `json:"question"`
	Score     int       `json:"score"`
	Options   []Option  `json:"options"`
	CreatedAt time.Time `json:"createdAt"`
}

// Option is a selectable answer. A question may have any number of correct options.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Option     string `json:"option"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Statistic is the result of one user attempting one quiz.
// Status is false while pending and true once answers were submitted.
type Statistic struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	QuizID     int64     `json:"quizId"`
	TotalScore int       `json:"totalScore"`
	Status     bool      `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	User       *User     `json:"user,omitempty"`
	Quiz       *Quiz     `json:"quiz,omitempty"`
}

// SelectedOption is an option joined with the question it belongs to.
type SelectedOption struct {
	OptionID      int64
	QuestionID    int64
	QuizID        int64
	IsCorrect     bool
	QuestionScore int
}

// Answer is a single selection inside a submission.
type Answer struct {
	OptionID int64 `json:"optionId"`
}

const (
	EventUserJoined = "user-joined"
	EventUserAnswer = "user-answer"
	EventMessage    = "message"
)

// Event is the envelope pushed to connected clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}
