package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"covidsafe-services-server/database"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
	"covidsafe-services-server/services"
	"covidsafe-services-server/utils"
)

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Username          string `json:"username" binding:"required"`
	Password          string `json:"password" binding:"required,min=6"`
	Role              string `json:"role" binding:"required"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	VaccinationStatus string `json:"vaccination_status"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token to rotate or revoke
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup) {
	router.POST("/register", register)
	router.POST("/login", login)
	router.POST("/refresh", refreshToken)
	router.POST("/logout", logout)
	router.GET("/me", middleware.AuthMiddleware(), getCurrentUser)
}

// register handles user registration
func register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	if !utils.ValidateUsername(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid username",
			"message": "Username must be 3-50 characters of letters, digits, '.', '-' or '_'",
		})
		return
	}

	role := models.UserRole(req.Role)
	if role != models.RoleClient && role != models.RoleProvider {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid role",
			"message": "Role must be 'client' or 'provider'",
		})
		return
	}

	// Check if username is taken
	var existingUser models.User
	if err := database.DB.Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Username already registered",
			"message": "A user with this username already exists",
		})
		return
	}

	// Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Password hashing failed",
			"message": "Failed to process password",
		})
		return
	}

	// The anonymous id replaces the real identity everywhere downstream
	anonymousID, err := utils.GenerateAnonymousID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Identifier generation failed",
			"message": "Failed to generate anonymous identifier",
		})
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hashedPassword,
		Role:         role,
		AnonymousID:  anonymousID,
		HealthStatus: models.HealthStatusHealthy,
	}

	// Email and phone are stored as one-way hashes only
	if req.Email != "" {
		hash := utils.HashData(req.Email)
		user.EmailHash = &hash
	}
	if req.Phone != "" {
		hash := utils.HashData(req.Phone)
		user.PhoneHash = &hash
	}
	if req.VaccinationStatus != "" {
		user.VaccinationStatus = &req.VaccinationStatus
	}

	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "User creation failed",
			"message": "Failed to create user account",
		})
		return
	}

	middleware.LogPrivacyAction(c, user.ID, models.ActionUserRegistered, "")

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// login handles user authentication
func login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Authentication failed",
			"message": "Incorrect username or password",
		})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Authentication failed",
			"message": "Incorrect username or password",
		})
		return
	}

	now := time.Now()
	database.DB.Model(&user).Update("last_login", now)

	jwtService := services.NewJWTService()
	pair, err := jwtService.GenerateTokenPair(&user, c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Token generation failed",
			"message": "Failed to generate authentication token",
		})
		return
	}

	middleware.LogPrivacyAction(c, user.ID, models.ActionUserLogin, "")

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
		"user":          user,
	})
}

// refreshToken rotates a refresh token into a new token pair
func refreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	jwtService := services.NewJWTService()
	pair, err := jwtService.RefreshTokenPair(req.RefreshToken, c.GetHeader("X-Device-ID"), c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		if err == gorm.ErrRecordNotFound || err == services.ErrRefreshTokenInvalid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid refresh token",
				"message": "Refresh token is invalid, expired or revoked",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Token refresh failed",
			"message": "Failed to refresh authentication token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
	})
}

// logout revokes a refresh token
func logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	jwtService := services.NewJWTService()
	if err := jwtService.RevokeRefreshToken(req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Logout failed",
			"message": "Failed to revoke refresh token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// getCurrentUser returns the authenticated user's record
func getCurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Not authenticated",
			"message": "No authenticated user in context",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
