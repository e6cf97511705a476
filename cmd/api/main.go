package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"diplocheck/internal/config"
	"diplocheck/internal/handlers"
	"diplocheck/internal/repositories"
	"diplocheck/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initializes repositories
	docRepo := repositories.NewDocumentRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize storage
	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.ArtifactPath)
	if err := storageService.EnsureDirs(); err != nil {
		log.Fatalf("❌ Failed to create storage directories: %v", err)
	}

	// Initialize pipeline stages
	rendererService := services.NewRendererService(cfg.OCR.RenderScale)
	pdfTextService := services.NewPDFTextService()
	qrDecoderService := services.NewQRDecoderService()

	recognizerService := services.NewRecognizerService(cfg.OCR.Language)
	if err := recognizerService.WarmUp(); err != nil {
		log.Fatalf("❌ Failed to initialize OCR engine: %v", err)
	}
	log.Println("✅ OCR engine initialized successfully")

	// The Gemini client serves the model extraction strategy and the archive
	// embeddings. It is only required when one of those is enabled.
	var geminiService services.GeminiService
	if cfg.Extraction.Strategy == "model" || cfg.Qdrant.URL != "" {
		geminiService, err = services.NewGeminiService(cfg.Extraction.GeminiAPIKey, cfg.Extraction.Timeout)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		log.Println("✅ Gemini AI initialized successfully")
	}

	var extractor services.FieldExtractor
	switch cfg.Extraction.Strategy {
	case "model":
		extractor = geminiService
	case "pattern":
		extractor = services.NewPatternExtractor()
	default:
		log.Fatalf("❌ Unknown extraction strategy: %s", cfg.Extraction.Strategy)
	}
	log.Printf("✅ Field extractor initialized (strategy: %s)\n", cfg.Extraction.Strategy)

	dispatcherService := services.NewDispatcherService(
		cfg.Backend.APIURL,
		cfg.Backend.APIKey,
		cfg.Backend.Timeout,
	)

	// The archive index is optional. Without a Qdrant URL the pipeline simply
	// skips indexing.
	var archiveService services.ArchiveService
	if cfg.Qdrant.URL != "" {
		archiveService, err = services.NewArchiveService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			geminiService,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize archive: %v", err)
		}
		if err := archiveService.InitCollection(); err != nil {
			log.Fatalf("❌ Failed to initialize archive collection: %v", err)
		}
		log.Println("✅ Archive initialized successfully")
	}

	// Initialize pipeline
	pipelineService := services.NewPipelineService(
		verificationRepo,
		docRepo,
		rendererService,
		recognizerService,
		pdfTextService,
		qrDecoderService,
		extractor,
		dispatcherService,
		storageService,
		archiveService,
	)
	log.Println("✅ Pipeline service initialized")

	// Initialize worker
	worker := services.NewWorker(
		verificationRepo,
		pipelineService,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker under a cancellable context so shutdown abandons
	// in-flight recognition and network calls instead of waiting them out.
	ctx, cancelJobs := context.WithCancel(context.Background())
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize Handlers
	uploadHandler := handlers.NewUploadHandler(
		docRepo,
		storageService,
		cfg.Storage.MaxFileSize,
	)
	processHandler := handlers.NewProcessHandler(
		verificationRepo,
		docRepo,
		worker,
	)

	resultHandler := handlers.NewResultHandler(verificationRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Diploma Verification API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/upload", uploadHandler.HandleUpload)
	api.Delete("/document/:id", uploadHandler.HandleDelete)
	api.Post("/process", processHandler.HandleProcess)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Get("/result/:id/artifact", resultHandler.HandleGetArtifact)

	// Near-duplicate lookup, only when the archive index is enabled
	if archiveService != nil {
		archiveHandler := handlers.NewArchiveHandler(archiveService)
		api.Post("/archive/search", archiveHandler.HandleSearchSimilar)
	}

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Diploma Verification API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/upload",
				"POST /api/v1/process",
				"GET /api/v1/result/:id",
				"GET /api/v1/result/:id/artifact",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		cancelJobs()
		worker.Stop()
		if err := recognizerService.Close(); err != nil {
			log.Printf("⚠️  Failed to close OCR engine: %v", err)
		}
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
