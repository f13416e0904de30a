package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quizlet-service/internal/app"
	"quizlet-service/internal/config"
	"quizlet-service/internal/domain"
	"quizlet-service/internal/infra/amqp"
	"quizlet-service/internal/infra/memory"
	"quizlet-service/internal/infra/postgres"
	infraredis "quizlet-service/internal/infra/redis"
	"quizlet-service/internal/logging"
	transport "quizlet-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	logging.SetDefault(log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var store app.Store
	if cfg.Postgres.URL != "" {
		db, err := postgres.Open(cfg.Postgres.URL, cfg.Postgres.Driver)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		store = postgres.NewStore(db)
	} else {
		log.Warn("postgres not configured, using in-memory store with a sample quiz")
		mem := memory.NewStore()
		if err := seedSampleQuiz(ctx, mem); err != nil {
			return err
		}
		store = mem
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = infraredis.NewQuizRepository(redisClient, store, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(store, quizTTL)
	}

	hub := transport.NewHub()
	notifiers := app.Notifiers{}
	if redisClient != nil {
		relay := infraredis.NewRelay(redisClient, cfg.Redis.Channel, hub, log)
		notifiers = append(notifiers, relay)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.WithError(err).Error("redis relay stopped")
			}
		}()
	} else {
		notifiers = append(notifiers, hub)
	}
	if cfg.AMQP.URL != "" {
		publisher, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}

	service := app.NewQuizService(store, quizRepo, notifiers)
	router := transport.NewRouter(transport.RouterConfig{
		Handler:        transport.NewHandler(service),
		WSHandler:      transport.NewWSHandler(service, hub, cfg.Server.AllowedOrigins),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	})

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":     finalPort,
			"postgres": cfg.Postgres.URL != "",
			"redis":    redisClient != nil,
			"amqp":     cfg.AMQP.URL != "",
		}).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
			cancel()
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// seedSampleQuiz provides a minimal quiz for the in-memory store; Postgres deployments author their own.
func seedSampleQuiz(ctx context.Context, store *memory.Store) error {
	quiz, err := store.CreateQuiz(ctx, domain.Quiz{Title: "Warm-up", Score: 1})
	if err != nil {
		return err
	}
	_, err = store.CreateQuestion(ctx, domain.Question{
		QuizID:   quiz.ID,
		Question: "What is 2 + 2?",
		Score:    1,
		Options: []domain.Option{
			{Option: "3"},
			{Option: "4", IsCorrect: true},
			{Option: "5"},
		},
	})
	return err
}
