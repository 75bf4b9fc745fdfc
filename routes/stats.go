package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"covidsafe-services-server/database"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
)

// RegisterStatsRoutes registers dashboard statistics routes
func RegisterStatsRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", getDashboardStats)
}

// getDashboardStats returns role-conditional aggregate counts
func getDashboardStats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if user.IsClient() {
		var totalBookings, pendingBookings int64
		database.DB.Model(&models.Booking{}).
			Where("client_id = ?", user.ID).
			Count(&totalBookings)
		database.DB.Model(&models.Booking{}).
			Where("client_id = ? AND status IN (?)", user.ID,
				[]string{string(models.BookingStatusPending), string(models.BookingStatusConfirmed)}).
			Count(&pendingBookings)

		c.JSON(http.StatusOK, gin.H{
			"total_bookings":   totalBookings,
			"pending_bookings": pendingBookings,
			"role":             user.Role,
		})
		return
	}

	var totalServices, totalBookings, completedBookings int64
	database.DB.Model(&models.Service{}).
		Where("provider_id = ?", user.ID).
		Count(&totalServices)
	database.DB.Model(&models.Booking{}).
		Where("provider_id = ?", user.ID).
		Count(&totalBookings)
	database.DB.Model(&models.Booking{}).
		Where("provider_id = ? AND status = ?", user.ID, models.BookingStatusCompleted).
		Count(&completedBookings)

	var totalEarnings float64
	database.DB.Model(&models.Booking{}).
		Where("provider_id = ? AND payment_status = ?", user.ID, models.PaymentStatusTransferred).
		Select("COALESCE(SUM(provider_amount), 0)").
		Scan(&totalEarnings)

	c.JSON(http.StatusOK, gin.H{
		"total_services":     totalServices,
		"total_bookings":     totalBookings,
		"completed_bookings": completedBookings,
		"total_earnings":     totalEarnings,
		"role":               user.Role,
	})
}
