package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quizlet-service/internal/app"
	"quizlet-service/internal/domain"
	"quizlet-service/internal/logging"
)

const maxBodyBytes = 1 << 20

// Handler exposes the quiz use cases as JSON endpoints.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

type messagePayload struct {
	Message string `json:"message"`
}

// questionView hides which options are correct from participants.
type questionView struct {
	ID       int64        `json:"id"`
	QuizID   int64        `json:"quizId"`
	Question string       `json:"question"`
	Score    int          `json:"score"`
	Options  []optionView `json:"options"`
}

type optionView struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Option     string `json:"option"`
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) ListRanks(w http.ResponseWriter, r *http.Request) {
	ranks, err := h.service.ListRanks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ranks)
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(r.URL.Query().Get("quizId"), 10, 64)
	if err != nil || quizID <= 0 {
		writeJSON(w, http.StatusBadRequest, messagePayload{Message: "quizId query parameter is required"})
		return
	}

	questions, err := h.service.ListQuestions(r.Context(), quizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		view := questionView{
			ID:       q.ID,
			QuizID:   q.QuizID,
			Question: q.Question,
			Score:    q.Score,
			Options:  make([]optionView, 0, len(q.Options)),
		}
		for _, opt := range q.Options {
			view.Options = append(view.Options, optionView{ID: opt.ID, QuestionID: opt.QuestionID, Option: opt.Option})
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in app.RegisterInput
	if !decode(w, r, &in) {
		return
	}
	stat, err := h.service.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stat)
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var in app.CreateQuizInput
	if !decode(w, r, &in) {
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in app.CreateQuestionInput
	if !decode(w, r, &in) {
		return
	}
	question, err := h.service.CreateQuestion(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *Handler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var in app.SubmitInput
	if !decode(w, r, &in) {
		return
	}
	stat, err := h.service.SubmitAnswers(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logging.WithContext(r.Context()).WithError(err).Warn("invalid request body")
		writeJSON(w, http.StatusBadRequest, messagePayload{Message: "invalid request body"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, messagePayload{Message: err.Error()})
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, messagePayload{Message: err.Error()})
	default:
		logging.WithContext(r.Context()).WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, messagePayload{Message: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
