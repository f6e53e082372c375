package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"clipforge/config"
	"clipforge/handlers"
	"clipforge/internal/analysis"
	"clipforge/internal/mediatransform"
	"clipforge/internal/moments"
	"clipforge/internal/notify"
	"clipforge/internal/pipeline"
	"clipforge/internal/sourceinfo"
	"clipforge/internal/storage"
	"clipforge/internal/store"
	"clipforge/internal/transcription"
	"clipforge/internal/worker"
	"clipforge/middleware"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	config.InitLogger()
	log := config.Log

	cfg, err := config.Load()
	if err != nil {
		log.WithField("error", err.Error()).Fatal("configuration error")
	}

	if err := config.InitSupabase(cfg); err != nil {
		log.WithField("error", err.Error()).Fatal("failed to initialize Supabase")
	}

	jobStore := store.New(config.SupabaseClient, log)
	uploader := storage.NewUploader(config.SupabaseClient.Storage, cfg.StorageBucket, log)

	transcriber := transcription.NewClient(
		cfg.TranscriptionURL, cfg.TranscriptionKey,
		cfg.Budgets.TranscribeMaxWait, cfg.Budgets.TranscribePollInterval,
		log,
	)
	analyzer := analysis.NewClient(cfg.AnalysisURL, cfg.AnalysisKey, cfg.AnalysisModel, log)
	selector := moments.NewSelector(analyzer, log)
	transformer := mediatransform.NewClient(cfg.TransformURL, cfg.TransformKey, log)
	resolver := sourceinfo.NewClient(cfg.ResolverURL, cfg.ResolverKey, log)
	notifier := notify.NewService(cfg.NtfyTopic, log)

	runner := worker.NewRunner(log)
	orch := pipeline.NewOrchestrator(
		jobStore, resolver, transcriber, selector, transformer,
		uploader, notifier, runner, cfg.Budgets, log,
	)
	runner.OnPanic(orch.HandleRunnerPanic)

	h := handlers.NewApplicationHandler(jobStore, orch, log)

	app := fiber.New(fiber.Config{
		AppName: "clipforge",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "clipforge is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")
	apiV1.Post("/jobs", h.CreateJob)
	apiV1.Get("/jobs", h.ListJobs)
	apiV1.Get("/jobs/:jobId", h.GetJob)
	apiV1.Delete("/jobs/:jobId", h.DeleteJob)
	apiV1.Get("/jobs/:jobId/clips", h.ListJobClips)

	go func() {
		log.WithField("port", cfg.Port).Info("starting clipforge")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithField("error", err.Error()).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithField("error", err.Error()).Warn("server shutdown error")
	}
	// Give in-flight jobs a chance to reach a terminal state before exit.
	if !runner.Shutdown(30 * time.Second) {
		log.Warn("background jobs still running at shutdown deadline")
	}
}
