package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"covidsafe-services-server/config"
	"covidsafe-services-server/database"
	"covidsafe-services-server/models"
	"covidsafe-services-server/utils"
)

// ErrRefreshTokenInvalid is returned when a refresh token is expired or revoked
var ErrRefreshTokenInvalid = errors.New("refresh token is invalid")

// JWTService handles access and refresh token operations
type JWTService struct{}

// NewJWTService creates a new JWT service
func NewJWTService() *JWTService {
	return &JWTService{}
}

// TokenPair represents a pair of access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// GenerateTokenPair generates both access and refresh tokens
func (js *JWTService) GenerateTokenPair(user *models.User, deviceID, userAgent, ipAddress string) (*TokenPair, error) {
	accessToken, err := utils.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := js.issueRefreshToken(user.ID, deviceID, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(config.AppConfig.JWT.ExpiryHours) * 3600,
		TokenType:    "Bearer",
	}, nil
}

// RefreshTokenPair validates a refresh token, revokes it and issues a new pair
func (js *JWTService) RefreshTokenPair(tokenString, deviceID, userAgent, ipAddress string) (*TokenPair, error) {
	var stored models.RefreshToken
	if err := database.DB.Where("token = ?", tokenString).First(&stored).Error; err != nil {
		return nil, err
	}

	if !stored.IsValid() {
		return nil, ErrRefreshTokenInvalid
	}

	var user models.User
	if err := database.DB.First(&user, stored.UserID).Error; err != nil {
		return nil, err
	}

	// Rotate: the old token is single-use
	if err := database.DB.Model(&stored).Update("is_revoked", true).Error; err != nil {
		return nil, err
	}

	return js.GenerateTokenPair(&user, deviceID, userAgent, ipAddress)
}

// RevokeRefreshToken marks a refresh token as revoked
func (js *JWTService) RevokeRefreshToken(tokenString string) error {
	return database.DB.Model(&models.RefreshToken{}).
		Where("token = ?", tokenString).
		Update("is_revoked", true).Error
}

// issueRefreshToken persists a new refresh token row
func (js *JWTService) issueRefreshToken(userID uint, deviceID, userAgent, ipAddress string) (string, error) {
	tokenString := uuid.NewString()

	refreshToken := &models.RefreshToken{
		Token:     tokenString,
		UserID:    userID,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
		DeviceID:  deviceID,
		UserAgent: userAgent,
		IPHash:    utils.HashData(ipAddress),
	}

	if err := database.DB.Create(refreshToken).Error; err != nil {
		return "", err
	}

	return tokenString, nil
}

// CleanupExpiredTokens removes expired and revoked refresh tokens
func (js *JWTService) CleanupExpiredTokens() error {
	result := database.DB.
		Where("expires_at <= ? OR is_revoked = ?", time.Now(), true).
		Delete(&models.RefreshToken{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("🧹 Removed %d expired refresh tokens", result.RowsAffected)
	}
	return nil
}
