package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"quizlet-service/internal/logging"
)

type RouterConfig struct {
	Handler        *Handler
	WSHandler      *WSHandler
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/users", cfg.Handler.ListUsers)
	r.Get("/ranks", cfg.Handler.ListRanks)
	r.Get("/quizzes", cfg.Handler.ListQuizzes)
	r.Get("/questions", cfg.Handler.ListQuestions)
	r.Post("/make-quiz", cfg.Handler.Register)
	r.Post("/quiz", cfg.Handler.CreateQuiz)
	r.Post("/question", cfg.Handler.CreateQuestion)
	r.Post("/answer", cfg.Handler.SubmitAnswers)

	r.Get("/ws", cfg.WSHandler.ServeWS)
	return r
}
