package main

import (
	"fmt"
	"log"

	"github.com/workpulse/receipt-extraction-service/internal/config"
	"github.com/workpulse/receipt-extraction-service/internal/currency"
	"github.com/workpulse/receipt-extraction-service/internal/database"
	"github.com/workpulse/receipt-extraction-service/internal/extractor"
	"github.com/workpulse/receipt-extraction-service/internal/handler"
	"github.com/workpulse/receipt-extraction-service/internal/ocr"
	"github.com/workpulse/receipt-extraction-service/internal/repository"
	"github.com/workpulse/receipt-extraction-service/internal/server"
	"github.com/workpulse/receipt-extraction-service/internal/service"
	"github.com/workpulse/receipt-extraction-service/internal/storage"
)

func main() {
	// Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to PostgreSQL
	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize OCR client for text recognition
	ocrClient := ocr.NewClient(&ocr.Config{
		BaseURL: cfg.OCRServiceURL,
		APIKey:  cfg.OCRAPIKey,
		Timeout: cfg.OCRTimeout,
	})

	// Initialize currency client for reporting-currency conversion
	currencyClient := currency.NewClient()

	// Initialize S3 uploader for receipt image archiving (optional)
	var uploader service.ImageUploader
	s3Uploader, err := storage.NewS3Uploader(&storage.Config{
		Endpoint:        cfg.StorageEndpoint,
		AccessKeyID:     cfg.StorageAccessKey,
		AccessKeySecret: cfg.StorageSecretKey,
		Bucket:          cfg.StorageBucket,
		Region:          cfg.StorageRegion,
	})
	if err != nil {
		log.Printf("Warning: S3 uploader not available, receipt images will not be archived: %v", err)
	} else {
		uploader = s3Uploader
	}

	// Initialize repositories
	log.Println("Initializing repositories...")
	expenseRepo := repository.NewPostgresExpenseRepository(db.GetPool())
	userRepo := repository.NewPostgresUserRepository(db.GetPool())

	// Create services
	log.Println("Creating receipt extraction service...")
	receiptService := service.NewReceiptService(service.Options{
		Repository:        expenseRepo,
		Recognizer:        ocrClient,
		Uploader:          uploader,
		Converter:         currencyClient,
		Extractor:         extractor.New(),
		MinConfidence:     cfg.MinConfidence,
		ReportingCurrency: cfg.ReportingCurrency,
		MaxWorkers:        cfg.MaxWorkers,
	})

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Create handlers
	handlers := server.Handlers{
		Receipt:  handler.NewReceiptHandler(receiptService),
		Auth:     handler.NewAuthHandler(authService),
		Currency: handler.NewCurrencyHandler(currencyClient),
	}

	// Create and configure server
	log.Println("Configuring server...")
	appServer := server.NewServer(cfg, handlers, authService)

	// Start server (blocking call)
	log.Printf("Starting server on port %d...", cfg.Port)
	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server shutdown complete")
}
