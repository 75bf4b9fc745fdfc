package routes

import (
	"net/http"
	"testing"

	"covidsafe-services-server/database"
	"covidsafe-services-server/models"
)

func TestRegister(t *testing.T) {
	router := setupTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username": "alice",
		"password": "password123",
		"role":     "client",
		"email":    "alice@example.com",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := database.DB.Where("username = ?", "alice").First(&user).Error; err != nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.AnonymousID == "" {
		t.Fatalf("expected anonymous id to be assigned")
	}
	if user.EmailHash == nil || len(*user.EmailHash) != 64 {
		t.Fatalf("expected email to be stored as a 64-char hash")
	}
	if user.HealthStatus != models.HealthStatusHealthy {
		t.Fatalf("expected initial health status healthy, got %s", user.HealthStatus)
	}

	// A privacy log row is written for the registration
	var logCount int64
	database.DB.Model(&models.PrivacyLog{}).
		Where("user_id = ? AND action = ?", user.ID, models.ActionUserRegistered).
		Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected 1 privacy log row, got %d", logCount)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router := setupTest(t)

	body := map[string]interface{}{
		"username": "bob",
		"password": "password123",
		"role":     "provider",
	}

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var first models.User
	if err := database.DB.Where("username = ?", "bob").First(&first).Error; err != nil {
		t.Fatalf("first user not found: %v", err)
	}

	w = doRequest(t, router, http.MethodPost, "/api/auth/register", "", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", w.Code)
	}

	// The first user's row is unaffected
	var again models.User
	if err := database.DB.Where("username = ?", "bob").First(&again).Error; err != nil {
		t.Fatalf("first user disappeared: %v", err)
	}
	if again.ID != first.ID || again.AnonymousID != first.AnonymousID {
		t.Fatalf("first user's row changed after duplicate registration")
	}

	var count int64
	database.DB.Model(&models.User{}).Where("username = ?", "bob").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly 1 user row, got %d", count)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	router := setupTest(t)

	w := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"username": "carol",
		"password": "password123",
		"role":     "admin",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	router := setupTest(t)
	createTestUser(t, "dave", models.RoleClient)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "dave",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatalf("expected access token in response")
	}
	if body["refresh_token"] == "" {
		t.Fatalf("expected refresh token in response")
	}

	// Access token works against a protected endpoint
	w = doRequest(t, router, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me with fresh token, got %d", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router := setupTest(t)
	createTestUser(t, "erin", models.RoleClient)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "erin",
		"password": "not-the-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRefreshToken_Rotation(t *testing.T) {
	router := setupTest(t)
	createTestUser(t, "frank", models.RoleProvider)

	w := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"username": "frank",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	refresh, _ := decodeBody(t, w)["refresh_token"].(string)

	w = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", map[string]interface{}{
		"refresh_token": refresh,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 refreshing, got %d: %s", w.Code, w.Body.String())
	}

	// The old refresh token is single-use
	w = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", map[string]interface{}{
		"refresh_token": refresh,
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 reusing rotated refresh token, got %d", w.Code)
	}
}
