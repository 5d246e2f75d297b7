package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/maheshrc27/postpilot/configs"
	"github.com/maheshrc27/postpilot/internal/api/handlers"
	"github.com/maheshrc27/postpilot/internal/api/middleware"
	job "github.com/maheshrc27/postpilot/internal/jobs"
	"github.com/maheshrc27/postpilot/internal/pagination"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/render"
	"github.com/maheshrc27/postpilot/internal/repository"
	"github.com/maheshrc27/postpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	postRepo := repository.NewPostRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	postImageRepo := repository.NewPostImageRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)

	profile := render.Profile{
		Width:         cfg.Canvas.Width,
		Height:        cfg.Canvas.Height,
		ContentHeight: cfg.Canvas.ContentHeight,
		SafetyMargin:  cfg.Canvas.SafetyMargin,
	}
	oracle := render.NewOracle(profile)
	renderer := render.NewRenderer(profile, cfg.RenderOutputDir)
	paginator := pagination.NewEngine(oracle)

	storageService := service.NewStorageService(
		service.NewR2Store(cfg.R2),
		service.NewBackupStore(cfg.Backup),
	)
	instagramService := service.NewInstagramService(cfg.Instagram)
	emailService := service.NewEmailService(cfg.Email, cfg.PublicBaseURL)
	generatorService := service.NewGeneratorService(cfg.GeminiAPIKey)

	postService := service.NewPostService(
		postRepo, approvalRepo, postImageRepo, historyRepo,
		paginator, renderer, storageService, instagramService,
		emailService, generatorService, cfg.MaxRetries)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	approval := handlers.NewApprovalHandler(postService, client)
	app.Get("/approve/:postID/:emailID/:action", approval.HandleAction)

	auth := handlers.NewAuthHandler(*cfg)
	app.Post("/auth/session", auth.CreateSession)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, approvalRepo, historyRepo, client)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/approvals", post.ApprovalHistory)
	api.Get("/posts/history", post.PostingHistory)
	api.Post("/posts/run", post.RunDaily)
	api.Post("/posts/publish", post.RequeuePublish)

	// cron jobs
	dailyJob := job.NewDailyPostJob(postService)
	listingJob := job.NewJobListingJob(postService, client)
	reminderJob := job.NewReminderJob(postService)

	// queue
	queueW := queue.NewQueue(postService)

	c := cron.New()
	c.AddFunc("0 0 9 * * *", dailyJob.Run)
	c.AddFunc("0 0 15 * * 1,4", listingJob.Run)
	c.AddFunc("@every 01h00m00s", reminderJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 5,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
