package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	cohortsHttp "finbot-admin-api/internal/cohorts/adapters/http/fiber"
	cohortsRepoPg "finbot-admin-api/internal/cohorts/adapters/postgres"
	cohortsUsecase "finbot-admin-api/internal/cohorts/core/usecase"

	segmentsBotapi "finbot-admin-api/internal/segments/adapters/botapi"
	segmentsHttp "finbot-admin-api/internal/segments/adapters/http/fiber"
	segmentsRepoPg "finbot-admin-api/internal/segments/adapters/postgres"
	segmentsUsecase "finbot-admin-api/internal/segments/core/usecase"

	statsHttp "finbot-admin-api/internal/stats/adapters/http/fiber"
	statsRepoPg "finbot-admin-api/internal/stats/adapters/postgres"
	statsUsecase "finbot-admin-api/internal/stats/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "finbot-admin-api/docs"
)

// @title finbot-admin-api
// @version 1.0
// @description Cohort retention analytics and audience segmentation backend for the finance-bot admin dashboard.
func main() {
	// Config
	_ = godotenv.Load()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is not set")
	}
	botBaseURL := os.Getenv("BOT_BACKEND_URL")
	if botBaseURL == "" {
		botBaseURL = "http://localhost:8002"
	}
	botAPIKey := os.Getenv("BOT_BACKEND_API_KEY")
	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	// DB connection
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}

	// Adapter-level DB wrappers
	cohortsDB := cohortsRepoPg.NewSQLDB(db)
	segmentsDB := segmentsRepoPg.NewSQLDB(db)
	statsDB := statsRepoPg.NewSQLDB(db)

	// Repositories and outbound adapters
	cohortRepository := cohortsRepoPg.NewCohortRepository(cohortsDB)
	segmentRepository := segmentsRepoPg.NewSegmentRepository(segmentsDB)
	statsRepository := statsRepoPg.NewStatsRepository(statsDB)
	notifier := segmentsBotapi.NewNotifier(botBaseURL, botAPIKey)

	// Usecases
	cohortRetentionUC := cohortsUsecase.NewCohortRetentionUseCase(cohortRepository, cohortRepository)
	resolveSegmentUC := segmentsUsecase.NewResolveSegmentUseCase(segmentRepository, notifier)
	getOverviewUC := statsUsecase.NewGetOverviewUseCase(statsRepository)

	// HTTP (Fiber) app + handlers
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	// analytics endpoints
	cohortHandler := cohortsHttp.NewCohortHandler(cohortRetentionUC)
	app.Get("/api/analytics/cohorts", cohortHandler.GetCohorts)

	// segment endpoints
	segmentHandler := segmentsHttp.NewSegmentHandler(resolveSegmentUC)
	app.Post("/api/segments/preview", segmentHandler.PreviewSegment)
	app.Post("/api/segments/broadcast", segmentHandler.BroadcastSegment)
	app.Get("/api/segments/filters", segmentHandler.GetFiltersMeta)

	// stats endpoints
	statsHandler := statsHttp.NewStatsHandler(getOverviewUC)
	app.Get("/api/stats", statsHandler.GetOverview)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(listenAddr); err != nil {
			log.Printf("fiber stopped: %v", err)
		}
	}()

	log.Printf("server started on %s", listenAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("fiber shutdown error: %v", err)
	}

	log.Println("server exiting")
}
