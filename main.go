package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"covidsafe-services-server/config"
	"covidsafe-services-server/database"
	"covidsafe-services-server/jobs"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
	"covidsafe-services-server/routes"
	ws "covidsafe-services-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Input validation
	router.Use(middleware.InputValidationMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AppConfig.CORS.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Device-ID"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "COVID-Safe Home Services API is running",
			"time":    time.Now().UTC(),
		})
	})

	// Provider notification hub
	providerHub := ws.NewHub()
	go providerHub.Run()

	providerHandler := ws.NewProviderHandler(providerHub)
	router.GET("/api/ws/provider", middleware.WebSocketAuthMiddleware(), providerHandler.HandleProvider)

	// New bookings are announced to their provider over the hub
	bookingCreatedChan := make(chan uint, 100)
	routes.SetBookingBroadcast(bookingCreatedChan)

	go func() {
		for bookingID := range bookingCreatedChan {
			var booking models.Booking
			if err := database.DB.
				Preload("Service").
				First(&booking, bookingID).Error; err != nil {
				log.Printf("❌ Failed to load booking %d for broadcast: %v", bookingID, err)
				continue
			}

			delivered := providerHub.SendToUser(booking.ProviderID, &ws.Message{
				Type: "booking_created",
				Data: map[string]interface{}{
					"booking_id":    booking.ID,
					"service_id":    booking.ServiceID,
					"service_title": booking.Service.Title,
					"booking_date":  booking.BookingDate,
					"booking_time":  booking.BookingTime,
					"amount":        booking.Amount,
					"status":        booking.Status,
				},
				Timestamp: time.Now(),
			})
			if delivered {
				log.Printf("📡 Booking %d announced to provider %d", booking.ID, booking.ProviderID)
			}
		}
	}()

	// API routes
	api := router.Group("/api")
	{
		// Auth routes (no authentication required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Service catalog: public reads, provider-only mutations
		servicesPublic := api.Group("/services")
		servicesProtected := api.Group("/services")
		servicesProtected.Use(middleware.AuthMiddleware())
		routes.RegisterServiceRoutes(servicesPublic, servicesProtected)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			bookingRoutes := protected.Group("/bookings")
			routes.RegisterBookingRoutes(bookingRoutes)

			healthRoutes := protected.Group("/health-declarations")
			routes.RegisterHealthRoutes(healthRoutes)

			statsRoutes := protected.Group("/stats")
			routes.RegisterStatsRoutes(statsRoutes)
		}
	}

	// Start background jobs
	cleanupJob := jobs.NewCleanupJob(24 * time.Hour)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = config.AppConfig.Server.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
