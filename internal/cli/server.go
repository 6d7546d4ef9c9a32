package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AyeleBedada/trial-LMS/internal/app"
	"github.com/AyeleBedada/trial-LMS/internal/config"
	"github.com/AyeleBedada/trial-LMS/internal/domain"
	"github.com/AyeleBedada/trial-LMS/internal/infra/memory"
	pgcatalog "github.com/AyeleBedada/trial-LMS/internal/infra/postgres"
	redisinfra "github.com/AyeleBedada/trial-LMS/internal/infra/redis"
	transport "github.com/AyeleBedada/trial-LMS/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
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

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader = memory.NewStaticCatalogLoader(seedCatalog())
	if pool != nil {
		loader = pgcatalog.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.QuizCatalog
	if redisClient != nil {
		catalog = redisinfra.NewCatalog(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalog(loader, catalogTTL)
	}

	var scores app.ScoreStore
	var gate app.GateStore
	var reports app.ReportLog
	if redisClient != nil {
		scores = redisinfra.NewScoreStore(redisClient)
		gate = redisinfra.NewGateStore(redisClient)
		reports = redisinfra.NewReportLog(redisClient, cfg.Reports.Limit)
	} else {
		scores = memory.NewScoreStore()
		gate = memory.NewGateStore()
		reports = memory.NewReportLog(cfg.Reports.Limit)
	}

	service := app.NewAssessmentService(scores, gate, reports, catalog)

	// Misconfigured weights must never serve a single request.
	if err := service.ValidateCatalog(ctx); err != nil {
		return err
	}

	wsHandler := transport.NewWSHandler(service)
	adminHandler := transport.NewAdminHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	adminHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting assessment service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// seedCatalog is the demo deployment: three quizzes weighted 0.4/0.3/0.3.
// Swap the loader for the Postgres-backed one in production.
func seedCatalog() []domain.QuizDefinition {
	return []domain.QuizDefinition{
		{
			ID:     "quiz-1",
			Title:  "Foundations of Modern Architecture",
			Weight: 0.4,
			Questions: []domain.Question{
				{
					ID:        "q1",
					Kind:      domain.KindSingleChoice,
					Prompt:    "Which movement championed 'form follows function'?",
					Options:   []string{"Baroque", "Modernism", "Gothic Revival"},
					AnswerKey: []string{"Modernism"},
				},
				{
					ID:        "q2",
					Kind:      domain.KindMultiChoice,
					Prompt:    "Which materials define the modernist skyline? Select all that apply.",
					Options:   []string{"Glass", "Steel", "Wattle and daub"},
					AnswerKey: []string{"Glass", "Steel"},
				},
				{
					ID:        "q3",
					Kind:      domain.KindFreeText,
					Prompt:    "Name the German school that shaped modern design education.",
					AnswerKey: []string{"Bauhaus"},
				},
				{
					ID:        "q4",
					Kind:      domain.KindSingleChoice,
					Prompt:    "Sustainable design focuses on energy efficiency.",
					Options:   []string{"True", "False"},
					AnswerKey: []string{"True"},
				},
			},
		},
		{
			ID:     "quiz-2",
			Title:  "Contemporary Landmarks",
			Weight: 0.3,
			Questions: []domain.Question{
				{
					ID:        "q1",
					Kind:      domain.KindSingleChoice,
					Prompt:    "The Sydney Opera House is an example of contemporary architecture.",
					Options:   []string{"True", "False"},
					AnswerKey: []string{"True"},
				},
				{
					ID:        "q2",
					Kind:      domain.KindSingleChoice,
					Prompt:    "The Burj Khalifa demonstrates ambition in global architecture.",
					Options:   []string{"True", "False"},
					AnswerKey: []string{"True"},
				},
				{
					ID:        "q3",
					Kind:      domain.KindSingleChoice,
					Prompt:    "Glass and steel are rarely used in modern architecture.",
					Options:   []string{"True", "False"},
					AnswerKey: []string{"False"},
				},
			},
		},
		{
			ID:     "quiz-3",
			Title:  "Climate and Adaptation",
			Weight: 0.3,
			Questions: []domain.Question{
				{
					ID:        "q1",
					Kind:      domain.KindSingleChoice,
					Prompt:    "Climate adaptation is ignored in modern architecture.",
					Options:   []string{"True", "False"},
					AnswerKey: []string{"False"},
				},
				{
					ID:        "q2",
					Kind:      domain.KindSingleChoice,
					Prompt:    "Modern architecture often embraces minimalism.",
					Options:   []string{"True", "False"},
					AnswerKey: []string{"True"},
				},
			},
		},
	}
}
