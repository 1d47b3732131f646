package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Simple-Accounting-Tools/papa-service/internal/api/handlers"
	"github.com/Simple-Accounting-Tools/papa-service/internal/api/middleware"
	"github.com/Simple-Accounting-Tools/papa-service/internal/config"
	"github.com/Simple-Accounting-Tools/papa-service/internal/extract"
	"github.com/Simple-Accounting-Tools/papa-service/internal/services"
	"github.com/Simple-Accounting-Tools/papa-service/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, taskClient handlers.ITaskClient) *gin.Engine {
	// Initialize services needed by API handlers
	blobStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}
	attachmentService := services.NewAttachmentService(db, blobStorage)
	clientService := services.NewClientService(db)
	vendorService := services.NewVendorService(db, clientService)
	productService := services.NewProductService(db, clientService, vendorService)
	categoryService := services.NewExpenseCategoryService(db)
	paymentTypeService := services.NewPaymentTypeService(db, clientService)
	poService := services.NewPurchaseOrderService(db, clientService, productService, vendorService, attachmentService)
	billService := services.NewBillService(db, clientService, poService, categoryService, attachmentService)
	paymentService := services.NewPaymentService(db, cfg, clientService, billService, paymentTypeService, attachmentService)
	fileReader := extract.NewFileReaderClient(cfg)

	r := gin.Default()

	// Apply global middleware first (order matters)
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	handlers.RegisterRestClientRoutes(r, handlers.NewRestClientHandler(clientService))
	handlers.RegisterRestVendorRoutes(r, handlers.NewRestVendorHandler(vendorService))
	handlers.RegisterRestProductRoutes(r, handlers.NewRestProductHandler(productService))
	handlers.RegisterRestExpenseCategoryRoutes(r, handlers.NewRestExpenseCategoryHandler(categoryService))
	handlers.RegisterRestPaymentTypeRoutes(r, handlers.NewRestPaymentTypeHandler(paymentTypeService))
	handlers.RegisterRestPurchaseOrderRoutes(r, handlers.NewRestPurchaseOrderHandler(poService, attachmentService))
	handlers.RegisterRestBillRoutes(r, handlers.NewRestBillHandler(billService, attachmentService))
	handlers.RegisterRestPaymentRoutes(r, handlers.NewRestPaymentHandler(paymentService, attachmentService, taskClient))
	handlers.RegisterRestAttachmentRoutes(r, handlers.NewRestAttachmentHandler(attachmentService))
	handlers.RegisterRestFileReaderRoutes(r, handlers.NewRestFileReaderHandler(fileReader))

	r.GET("/v1/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used for
// operational commands on a separate port.
func SetupServiceRouter(cfg *config.Config, rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		case "getTestEmail":
			var args []string // Expect ["email"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [email]"})
				return
			}
			redisKey := fmt.Sprintf("mock:email:%s", args[0])

			// Poll Redis briefly for the key
			var emailJSONData string
			found := false
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			for i := 0; i < 10; i++ {
				data, getErr := rdb.Get(ctx, redisKey).Result()
				if getErr == nil {
					emailJSONData = data
					found = true
					rdb.Del(ctx, redisKey)
					break
				}
				if getErr != redis.Nil {
					log.Printf("Service API: Error getting key %s from Redis: %v", redisKey, getErr)
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				time.Sleep(200 * time.Millisecond)
			}

			if !found {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found in Redis for key %s", redisKey)})
				return
			}

			var emailData map[string]interface{}
			if err := json.Unmarshal([]byte(emailJSONData), &emailData); err != nil {
				log.Printf("Service API: Error unmarshalling email data from key %s: %v", redisKey, err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to parse stored email data"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": emailData})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
