package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nocyshop/nocy-shop-api/config"
	"github.com/nocyshop/nocy-shop-api/controllers"
	"github.com/nocyshop/nocy-shop-api/middleware"
	"github.com/nocyshop/nocy-shop-api/models"
	"github.com/nocyshop/nocy-shop-api/services"
)

func main() {
	log.Println("Starting Nocy Shop API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := config.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Order{},
		&models.Message{},
		&models.Product{},
		&models.Spec{},
		&models.ShopConfig{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize services
	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitImageService(s3Service)
	services.InitSheetService(cfg)
	services.InitDiscordService(cfg)

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter creates the router with all API routes and middleware
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Storefront catalog
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/addons", controllers.ListAddons)
		v1.GET("/shop-status", controllers.GetShopStatus)

		// Customer ordering
		v1.POST("/orders/doll", controllers.CreateDollOrder)
		v1.POST("/orders/badge", controllers.CreateBadgeOrder)
		v1.GET("/orders/lookup", controllers.LookupOrders)
		v1.GET("/orders/:id/messages", controllers.ListMessages)
		v1.POST("/orders/:id/messages", controllers.SendCustomerMessage)

		// Admin routes require a valid Auth0 token from an admin account
		admin := v1.Group("/admin")
		admin.Use(middleware.EnsureValidToken(cfg), middleware.RequireAdmin(cfg))
		{
			admin.GET("/orders", controllers.AdminListOrders)
			admin.POST("/orders", controllers.AdminCreateOrder)
			admin.PATCH("/orders/:id", controllers.AdminUpdateOrder)
			admin.POST("/orders/:id/messages", controllers.SendAdminMessage)
			admin.POST("/orders/:id/progress-images", controllers.AdminAppendProgressImage)
			admin.DELETE("/orders", controllers.AdminBatchDeleteOrders)
			admin.GET("/orders/cleanup-candidates", controllers.AdminListCleanupCandidates)
			admin.POST("/orders/cleanup", controllers.AdminCleanupOrders)
			admin.POST("/sync/orders", controllers.AdminResyncOrders)
			admin.PUT("/shop-status", controllers.AdminSetShopStatus)
			admin.GET("/products", controllers.AdminListProducts)
			admin.POST("/products", controllers.AdminCreateProduct)
			admin.PATCH("/products/:id", controllers.AdminUpdateProduct)
			admin.PATCH("/products/:id/specs/:specId", controllers.AdminUpdateSpec)
			admin.POST("/uploads/:role", controllers.AdminUploadImage)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Nocy Shop API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
