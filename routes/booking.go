package routes

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"covidsafe-services-server/database"
	"covidsafe-services-server/middleware"
	"covidsafe-services-server/models"
	"covidsafe-services-server/utils"
)

// BookingRequest represents the booking creation request. Card details are
// captured for display only; no authorization is performed anywhere.
type BookingRequest struct {
	ServiceID    uint   `json:"service_id" binding:"required"`
	BookingDate  string `json:"booking_date" binding:"required"`
	BookingTime  string `json:"booking_time" binding:"required"`
	Location     string `json:"location" binding:"required"`
	PrivacyLevel string `json:"privacy_level"`
	CardNumber   string `json:"card_number" binding:"required,min=4"`
	CardName     string `json:"card_name" binding:"required"`
	CardExpiry   string `json:"card_expiry"`
	CardCVV      string `json:"card_cvv"`
}

// OTPVerifyRequest represents the OTP verification request
type OTPVerifyRequest struct {
	OTPCode string `json:"otp_code" binding:"required,len=6"`
}

// bookingCreatedChan receives IDs of freshly created bookings for WebSocket
// broadcast to connected providers
var bookingCreatedChan chan<- uint

// SetBookingBroadcast wires the channel used to announce new bookings
func SetBookingBroadcast(ch chan<- uint) {
	bookingCreatedChan = ch
}

func announceBooking(bookingID uint) {
	if bookingCreatedChan == nil {
		return
	}
	select {
	case bookingCreatedChan <- bookingID:
	default:
		log.Printf("⚠️ Booking broadcast channel full, dropping booking %d", bookingID)
	}
}

// RegisterBookingRoutes registers booking lifecycle routes
func RegisterBookingRoutes(router *gin.RouterGroup) {
	router.POST("", createBooking)
	router.GET("", listBookings)
	router.GET("/:id", getBooking)
	router.GET("/:id/transactions", listBookingTransactions)
	router.POST("/:id/verify-otp", verifyBookingOTP)
	router.POST("/:id/complete", completeBooking)
}

// createBooking creates a booking with escrow hold, contact event and
// payment ledger entry in a single transaction
func createBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	var service models.Service
	if err := database.DB.First(&service, req.ServiceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Service not found",
			"message": "No service exists with this ID",
		})
		return
	}

	var provider models.User
	if err := database.DB.First(&provider, service.ProviderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Provider not found",
			"message": "The service's provider no longer exists",
		})
		return
	}

	breakdown := utils.CalculatePaymentAmounts(service.Price)

	otpCode, err := utils.GenerateOTP()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}
	traceToken, err := utils.GenerateContactTraceToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}
	paymentReference, err := utils.GeneratePaymentReference()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
		return
	}

	if req.PrivacyLevel == "" {
		req.PrivacyLevel = "standard"
	}

	now := time.Now()
	booking := models.Booking{
		ServiceID:         service.ID,
		ClientID:          user.ID,
		ProviderID:        service.ProviderID,
		BookingDate:       req.BookingDate,
		BookingTime:       req.BookingTime,
		Status:            models.BookingStatusPending,
		LocationHash:      utils.HashData(req.Location),
		ContactTraceToken: traceToken,
		PrivacyLevel:      req.PrivacyLevel,
		OTPCode:           otpCode,
		OTPGeneratedAt:    &now,
		// Funds are modeled as held in escrow at booking time
		PaymentStatus:    models.PaymentStatusPaidHeld,
		Amount:           breakdown.Total,
		PlatformFee:      breakdown.PlatformFee,
		ProviderAmount:   breakdown.ProviderAmount,
		CardLast4:        utils.CardLast4(req.CardNumber),
		CardType:         utils.CardType(req.CardNumber),
		PaymentReference: paymentReference,
		PaidAt:           &now,
	}

	// Booking, contact event, held transaction and privacy log succeed or
	// fail together
	resource := ""
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		contactEvent := models.ContactEvent{
			AnonymousID1:   user.AnonymousID,
			AnonymousID2:   provider.AnonymousID,
			EncounterToken: booking.ContactTraceToken,
			EncounterDate:  booking.BookingDate,
			ProximityLevel: "close",
			LocationHash:   booking.LocationHash,
		}
		if err := tx.Create(&contactEvent).Error; err != nil {
			return err
		}

		completedAt := now
		transaction := models.PaymentTransaction{
			BookingID:        booking.ID,
			TransactionType:  models.TransactionPaymentHeld,
			Amount:           breakdown.Total,
			PaymentReference: paymentReference,
			Status:           models.TransactionStatusHeld,
			Description:      "Payment of $" + strconv.FormatFloat(breakdown.Total, 'f', 2, 64) + " held in escrow",
			CompletedAt:      &completedAt,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		resource = "booking_" + strconv.FormatUint(uint64(booking.ID), 10)
		entry := models.PrivacyLog{
			UserID:   user.ID,
			Action:   models.ActionBookingCreated,
			Resource: &resource,
			IPHash:   utils.HashData(c.ClientIP()),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Booking creation failed",
			"message": "Failed to create booking",
		})
		return
	}

	announceBooking(booking.ID)

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// listBookings returns all bookings for the current user, scoped by role
func listBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	query := database.DB.Preload("Service")
	if user.IsClient() {
		query = query.Where("client_id = ?", user.ID)
	} else {
		query = query.Where("provider_id = ?", user.ID)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch bookings",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// loadBookingForParty fetches a booking and enforces that the caller is one
// of its two parties. Returns false after writing the error response.
func loadBookingForParty(c *gin.Context, user models.User, booking *models.Booking) bool {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid booking ID",
			"message": "Booking ID must be a number",
		})
		return false
	}

	if err := database.DB.First(booking, bookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Booking not found",
			"message": "No booking exists with this ID",
		})
		return false
	}

	if booking.ClientID != user.ID && booking.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Not authorized",
			"message": "Only the booking's client or provider can access it",
		})
		return false
	}

	return true
}

// getBooking returns a specific booking to its client or provider
func getBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var booking models.Booking
	if !loadBookingForParty(c, user, &booking) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// verifyBookingOTP confirms the in-person encounter. Only the assigned
// provider may verify; the code must match exactly. There is no expiry and no
// attempt lockout.
func verifyBookingOTP(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid booking ID",
			"message": "Booking ID must be a number",
		})
		return
	}

	var booking models.Booking
	if err := database.DB.First(&booking, bookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Booking not found",
			"message": "No booking exists with this ID",
		})
		return
	}

	if booking.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Not authorized",
			"message": "Only the assigned provider can verify the OTP",
		})
		return
	}

	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"message": err.Error(),
		})
		return
	}

	if booking.OTPCode != req.OTPCode {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid OTP code",
			"message": "The provided code does not match",
		})
		return
	}

	booking.OTPVerified = true
	booking.Status = models.BookingStatusConfirmed
	if err := database.DB.Save(&booking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "OTP verification failed",
			"message": "Failed to update booking",
		})
		return
	}

	middleware.LogPrivacyAction(c, user.ID, models.ActionOTPVerified, "booking_"+strconv.FormatUint(bookingID, 10))

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully"})
}

// completeBooking marks the booking completed and releases the escrow hold to
// the provider. Completion always succeeds; the transfer row is appended only
// when the payment is still held, so calling twice never produces a second
// transfer.
func completeBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid booking ID",
			"message": "Booking ID must be a number",
		})
		return
	}

	var booking models.Booking
	if err := database.DB.First(&booking, bookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Booking not found",
			"message": "No booking exists with this ID",
		})
		return
	}

	if booking.ProviderID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Not authorized",
			"message": "Only the assigned provider can complete the booking",
		})
		return
	}

	now := time.Now()
	booking.Status = models.BookingStatusCompleted
	booking.CompletedAt = &now

	transfer := booking.PaymentStatus == models.PaymentStatusPaidHeld
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if transfer {
			booking.PaymentStatus = models.PaymentStatusTransferred
			booking.TransferredAt = &now
		}
		if err := tx.Save(&booking).Error; err != nil {
			return err
		}
		if !transfer {
			return nil
		}

		completedAt := now
		transaction := models.PaymentTransaction{
			BookingID:        booking.ID,
			TransactionType:  models.TransactionTransferToProvider,
			Amount:           booking.ProviderAmount,
			PaymentReference: "TRANSFER-" + strconv.FormatUint(uint64(booking.ID), 10),
			Status:           models.TransactionStatusCompleted,
			Description: "$" + strconv.FormatFloat(booking.ProviderAmount, 'f', 2, 64) +
				" transferred to provider (Platform fee: $" + strconv.FormatFloat(booking.PlatformFee, 'f', 2, 64) + ")",
			CompletedAt: &completedAt,
		}
		return tx.Create(&transaction).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Completion failed",
			"message": "Failed to complete booking",
		})
		return
	}

	if transfer {
		middleware.LogPrivacyAction(c, user.ID, models.ActionPaymentTransferred, "booking_"+strconv.FormatUint(bookingID, 10))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Booking completed",
		"payment_transferred": booking.ProviderAmount,
		"platform_fee":        booking.PlatformFee,
	})
}

// listBookingTransactions returns the payment ledger rows of a booking
func listBookingTransactions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var booking models.Booking
	if !loadBookingForParty(c, user, &booking) {
		return
	}

	var transactions []models.PaymentTransaction
	if err := database.DB.Where("booking_id = ?", booking.ID).Order("created_at ASC").Find(&transactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch transactions",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
