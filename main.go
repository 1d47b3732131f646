package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Simple-Accounting-Tools/papa-service/internal/api"
	"github.com/Simple-Accounting-Tools/papa-service/internal/cache"
	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
	"github.com/Simple-Accounting-Tools/papa-service/internal/db"
	"github.com/Simple-Accounting-Tools/papa-service/internal/email"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
	"github.com/Simple-Accounting-Tools/papa-service/internal/storage"
	"github.com/Simple-Accounting-Tools/papa-service/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	if err := db.EnsureIndexes(context.Background(), mongoDb); err != nil {
		log.Fatalf("Failed to ensure database indexes: %v", err)
	}

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Initialize Email Sender
	var primaryEmailSender email.Sender
	if os.Getenv("MOCK_SERVICES") == "true" {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primaryEmailSender = email.NewRedisSender(redisClient, cfg)
	} else {
		primaryEmailSender = email.NewSMTPSender(cfg)
	}

	compositeSender := email.NewCompositeEmailSender(primaryEmailSender)
	if logEmailsPath := os.Getenv("LOG_EMAILS"); logEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(logEmailsPath, cfg)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", logEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
		}
	}
	finalEmailSender := email.Sender(compositeSender)

	// Initialize services needed by the task processor
	blobStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}
	attachmentService := services.NewAttachmentService(mongoDb, blobStorage)
	clientService := services.NewClientService(mongoDb)
	vendorService := services.NewVendorService(mongoDb, clientService)
	productService := services.NewProductService(mongoDb, clientService, vendorService)
	categoryService := services.NewExpenseCategoryService(mongoDb)
	paymentTypeService := services.NewPaymentTypeService(mongoDb, clientService)
	poService := services.NewPurchaseOrderService(mongoDb, clientService, productService, vendorService, attachmentService)
	billService := services.NewBillService(mongoDb, clientService, poService, categoryService, attachmentService)
	paymentService := services.NewPaymentService(mongoDb, cfg, clientService, billService, paymentTypeService, attachmentService)

	// Initialize Task Client and Processor
	taskClient := tasks.NewClient(redisClient)
	taskProcessor := tasks.NewTaskProcessor(cfg, finalEmailSender, paymentService, billService, poService, vendorService, clientService)

	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs)
	serviceRouter := api.SetupServiceRouter(cfg, redisClient, shutdownChan)
	serviceSrv := &http.Server{
		Addr:    ":" + cfg.ServiceApiPort,
		Handler: serviceRouter,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Printf("Service API listening on :%s\n", cfg.ServiceApiPort)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	overdueTickerDone := make(chan struct{})

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		mainApiRouter := api.SetupRouter(cfg, mongoDb, taskClient)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Main API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
		}()
	}

	bgMode := func() {
		srv, mux := tasks.SetupServer(redisClient, taskProcessor)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := backgroundTaskSrv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
		}()

		// Periodic overdue sweep: enqueue the check task on an interval.
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(cfg.OverdueCheckInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if _, err := taskClient.Enqueue(tasks.NewOverdueCheckTask()); err != nil {
						log.Printf("Failed to enqueue overdue check task: %v", err)
					}
				case <-overdueTickerDone:
					return
				}
			}
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)
	case <-shutdownChan:
		fmt.Println("\nShutdown requested via Service API. Shutting down gracefully...")
	}

	close(overdueTickerDone)

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	fmt.Println("Server gracefully stopped")
}
