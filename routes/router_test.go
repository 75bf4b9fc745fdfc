package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"covidsafe-services-server/config"
	"covidsafe-services-server/database"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
	"covidsafe-services-server/utils"
)

// setupTest wires an in-memory database and a router with the same route
// layout as main.go
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.Load()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	database.DB = db

	router := gin.New()
	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	RegisterAuthRoutes(authRoutes)

	servicesPublic := api.Group("/services")
	servicesProtected := api.Group("/services")
	servicesProtected.Use(middleware.AuthMiddleware())
	RegisterServiceRoutes(servicesPublic, servicesProtected)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	RegisterBookingRoutes(protected.Group("/bookings"))
	RegisterHealthRoutes(protected.Group("/health-declarations"))
	RegisterStatsRoutes(protected.Group("/stats"))

	return router
}

// createTestUser inserts a user directly and returns it with a valid token
func createTestUser(t *testing.T, username string, role models.UserRole) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	anonymousID, err := utils.GenerateAnonymousID()
	if err != nil {
		t.Fatalf("failed to generate anonymous id: %v", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		AnonymousID:  anonymousID,
		HealthStatus: models.HealthStatusHealthy,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return user, token
}

// createTestService inserts a service owned by the given provider
func createTestService(t *testing.T, providerID uint, price float64) models.Service {
	t.Helper()

	service := models.Service{
		ProviderID:  providerID,
		ServiceType: "cleaning",
		Title:       "Deep cleaning",
		Price:       price,
		MaxDistance: 10,
		CovidSafe:   true,
	}
	if err := database.DB.Create(&service).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

// doRequest performs a JSON request against the router
func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON response body
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

// itoa formats a record ID for URL paths
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// wrongOTP returns a 6-digit code guaranteed to differ from the given one
func wrongOTP(otp string) string {
	if otp == "100000" {
		return "100001"
	}
	return "100000"
}

// createTestBooking drives the create endpoint and returns the stored row
func createTestBooking(t *testing.T, router *gin.Engine, clientToken string, serviceID uint) models.Booking {
	t.Helper()

	w := doRequest(t, router, http.MethodPost, "/api/bookings", clientToken, map[string]interface{}{
		"service_id":   serviceID,
		"booking_date": "2026-09-15",
		"booking_time": "10:00",
		"location":     "12 Main Street",
		"card_number":  "4111111111111111",
		"card_name":    "Test Client",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating booking, got %d: %s", w.Code, w.Body.String())
	}

	var booking models.Booking
	if err := database.DB.Order("id DESC").First(&booking).Error; err != nil {
		t.Fatalf("failed to load created booking: %v", err)
	}
	return booking
}
