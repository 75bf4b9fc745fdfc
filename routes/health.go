package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"covidsafe-services-server/database"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
	"covidsafe-services-server/utils"
)

// HealthDeclarationRequest represents a self-reported health declaration
type HealthDeclarationRequest struct {
	DeclarationDate string   `json:"declaration_date" binding:"required"`
	Symptoms        string   `json:"symptoms"`
	Temperature     *float64 `json:"temperature"`
	CovidTestResult string   `json:"covid_test_result" binding:"required"`
}

// RegisterHealthRoutes registers health declaration routes
func RegisterHealthRoutes(router *gin.RouterGroup) {
	router.POST("", createHealthDeclaration)
}

// createHealthDeclaration records a declaration. A positive test result marks
// the declarer positive and reports how many contact events reference them.
// No notification is delivered to the matched parties.
func createHealthDeclaration(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req HealthDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	declarationHash, err := utils.GenerateSecureToken(16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	declaration := models.HealthDeclaration{
		UserID:          user.ID,
		DeclarationDate: req.DeclarationDate,
		Temperature:     req.Temperature,
		CovidTestResult: req.CovidTestResult,
		DeclarationHash: declarationHash,
	}
	if req.Symptoms != "" {
		declaration.Symptoms = &req.Symptoms
	}

	if err := database.DB.Create(&declaration).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Declaration failed",
			"message": "Failed to record health declaration",
		})
		return
	}

	var contactsTraced int64
	if req.CovidTestResult == models.TestResultPositive {
		if err := database.DB.Model(&models.ContactEvent{}).
			Where("anonymous_id_1 = ? OR anonymous_id_2 = ?", user.AnonymousID, user.AnonymousID).
			Count(&contactsTraced).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Contact lookup failed",
				"message": "Failed to query contact events",
			})
			return
		}

		if err := database.DB.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("health_status", models.HealthStatusPositive).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Status update failed",
				"message": "Failed to update health status",
			})
			return
		}

		middleware.LogPrivacyAction(c, user.ID, models.ActionPositiveTestReported, "")
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Health declaration submitted",
		"contacts_traced": contactsTraced,
	})
}
