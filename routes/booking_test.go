package routes

import (
	"net/http"
	"testing"

	"covidsafe-services-server/database"
	"covidsafe-services-server/models"
)

func TestCreateBooking(t *testing.T) {
	router := setupTest(t)
	provider, _ := createTestUser(t, "provider1", models.RoleProvider)
	client, clientToken := createTestUser(t, "client1", models.RoleClient)
	service := createTestService(t, provider.ID, 100.00)

	booking := createTestBooking(t, router, clientToken, service.ID)

	if booking.Status != models.BookingStatusPending {
		t.Fatalf("expected status pending, got %s", booking.Status)
	}
	if booking.PaymentStatus != models.PaymentStatusPaidHeld {
		t.Fatalf("expected payment status paid_held, got %s", booking.PaymentStatus)
	}
	if booking.ProviderID != provider.ID || booking.ClientID != client.ID {
		t.Fatalf("booking parties mismatch: client=%d provider=%d", booking.ClientID, booking.ProviderID)
	}
	if booking.PlatformFee != 5.00 || booking.ProviderAmount != 95.00 || booking.Amount != 100.00 {
		t.Fatalf("unexpected fee split: %v / %v / %v", booking.Amount, booking.PlatformFee, booking.ProviderAmount)
	}
	if booking.CardType != "Visa" || booking.CardLast4 != "1111" {
		t.Fatalf("unexpected card info: %s %s", booking.CardType, booking.CardLast4)
	}
	if len(booking.OTPCode) != 6 {
		t.Fatalf("expected 6-digit OTP, got %q", booking.OTPCode)
	}
	if len(booking.ContactTraceToken) != 32 {
		t.Fatalf("expected 32-char trace token, got %q", booking.ContactTraceToken)
	}

	// One contact event keyed by the booking's trace token
	var event models.ContactEvent
	if err := database.DB.Where("encounter_token = ?", booking.ContactTraceToken).First(&event).Error; err != nil {
		t.Fatalf("contact event not found: %v", err)
	}
	if event.AnonymousID1 != client.AnonymousID || event.AnonymousID2 != provider.AnonymousID {
		t.Fatalf("contact event references wrong anonymous ids")
	}

	// One held transaction for the full amount
	var tx models.PaymentTransaction
	if err := database.DB.Where("booking_id = ?", booking.ID).First(&tx).Error; err != nil {
		t.Fatalf("payment transaction not found: %v", err)
	}
	if tx.TransactionType != models.TransactionPaymentHeld || tx.Amount != 100.00 {
		t.Fatalf("unexpected transaction: %s %v", tx.TransactionType, tx.Amount)
	}
	if tx.Status != models.TransactionStatusHeld {
		t.Fatalf("expected held status, got %s", tx.Status)
	}

	// One privacy log row for the creation
	var logCount int64
	database.DB.Model(&models.PrivacyLog{}).
		Where("user_id = ? AND action = ?", client.ID, models.ActionBookingCreated).
		Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected 1 privacy log row, got %d", logCount)
	}
}

func TestCreateBooking_ServiceNotFound(t *testing.T) {
	router := setupTest(t)
	_, clientToken := createTestUser(t, "client2", models.RoleClient)

	w := doRequest(t, router, http.MethodPost, "/api/bookings", clientToken, map[string]interface{}{
		"service_id":   9999,
		"booking_date": "2026-09-15",
		"booking_time": "10:00",
		"location":     "12 Main Street",
		"card_number":  "4111111111111111",
		"card_name":    "Test Client",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCreateBooking_Atomicity(t *testing.T) {
	router := setupTest(t)
	provider, _ := createTestUser(t, "provider3", models.RoleProvider)
	_, clientToken := createTestUser(t, "client3", models.RoleClient)
	service := createTestService(t, provider.ID, 50.00)

	// Force the second write of the transaction to fail
	if err := database.DB.Migrator().DropTable(&models.ContactEvent{}); err != nil {
		t.Fatalf("failed to drop contact_events: %v", err)
	}

	w := doRequest(t, router, http.MethodPost, "/api/bookings", clientToken, map[string]interface{}{
		"service_id":   service.ID,
		"booking_date": "2026-09-15",
		"booking_time": "10:00",
		"location":     "12 Main Street",
		"card_number":  "4111111111111111",
		"card_name":    "Test Client",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	// The booking write must have been rolled back
	var bookings int64
	database.DB.Model(&models.Booking{}).Count(&bookings)
	if bookings != 0 {
		t.Fatalf("expected 0 bookings after rollback, got %d", bookings)
	}
	var transactions int64
	database.DB.Model(&models.PaymentTransaction{}).Count(&transactions)
	if transactions != 0 {
		t.Fatalf("expected 0 transactions after rollback, got %d", transactions)
	}
}

func TestVerifyOTP(t *testing.T) {
	router := setupTest(t)
	provider, providerToken := createTestUser(t, "provider4", models.RoleProvider)
	_, clientToken := createTestUser(t, "client4", models.RoleClient)
	service := createTestService(t, provider.ID, 80.00)
	booking := createTestBooking(t, router, clientToken, service.ID)

	path := "/api/bookings/" + itoa(booking.ID) + "/verify-otp"

	// Wrong code leaves the booking pending
	w := doRequest(t, router, http.MethodPost, path, providerToken, map[string]interface{}{
		"otp_code": wrongOTP(booking.OTPCode),
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong OTP, got %d", w.Code)
	}

	var fresh models.Booking
	database.DB.First(&fresh, booking.ID)
	if fresh.Status != models.BookingStatusPending || fresh.OTPVerified {
		t.Fatalf("wrong OTP must not change state: status=%s verified=%v", fresh.Status, fresh.OTPVerified)
	}

	// A retry with the correct code succeeds (no lockout)
	w = doRequest(t, router, http.MethodPost, path, providerToken, map[string]interface{}{
		"otp_code": booking.OTPCode,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for correct OTP, got %d: %s", w.Code, w.Body.String())
	}

	database.DB.First(&fresh, booking.ID)
	if fresh.Status != models.BookingStatusConfirmed || !fresh.OTPVerified {
		t.Fatalf("expected confirmed/verified booking, got status=%s verified=%v", fresh.Status, fresh.OTPVerified)
	}
}

func TestVerifyOTP_ClientForbidden(t *testing.T) {
	router := setupTest(t)
	provider, _ := createTestUser(t, "provider5", models.RoleProvider)
	_, clientToken := createTestUser(t, "client5", models.RoleClient)
	service := createTestService(t, provider.ID, 80.00)
	booking := createTestBooking(t, router, clientToken, service.ID)

	w := doRequest(t, router, http.MethodPost, "/api/bookings/"+itoa(booking.ID)+"/verify-otp", clientToken, map[string]interface{}{
		"otp_code": booking.OTPCode,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for client verifying OTP, got %d", w.Code)
	}
}

func TestCompleteBooking_TransferOnce(t *testing.T) {
	router := setupTest(t)
	provider, providerToken := createTestUser(t, "provider6", models.RoleProvider)
	_, clientToken := createTestUser(t, "client6", models.RoleClient)
	service := createTestService(t, provider.ID, 100.00)
	booking := createTestBooking(t, router, clientToken, service.ID)

	path := "/api/bookings/" + itoa(booking.ID) + "/complete"

	w := doRequest(t, router, http.MethodPost, path, providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var fresh models.Booking
	database.DB.First(&fresh, booking.ID)
	if fresh.Status != models.BookingStatusCompleted {
		t.Fatalf("expected completed, got %s", fresh.Status)
	}
	if fresh.PaymentStatus != models.PaymentStatusTransferred {
		t.Fatalf("expected transferred, got %s", fresh.PaymentStatus)
	}

	// Second completion succeeds silently and appends nothing
	w = doRequest(t, router, http.MethodPost, path, providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat completion, got %d", w.Code)
	}

	var transfers int64
	database.DB.Model(&models.PaymentTransaction{}).
		Where("booking_id = ? AND transaction_type = ?", booking.ID, models.TransactionTransferToProvider).
		Count(&transfers)
	if transfers != 1 {
		t.Fatalf("expected exactly 1 transfer row, got %d", transfers)
	}

	var transfer models.PaymentTransaction
	database.DB.Where("booking_id = ? AND transaction_type = ?", booking.ID, models.TransactionTransferToProvider).
		First(&transfer)
	if transfer.Amount != 95.00 {
		t.Fatalf("expected transfer of provider amount 95.00, got %v", transfer.Amount)
	}
}

func TestGetBooking_PartyOnly(t *testing.T) {
	router := setupTest(t)
	provider, providerToken := createTestUser(t, "provider7", models.RoleProvider)
	_, clientToken := createTestUser(t, "client7", models.RoleClient)
	_, strangerToken := createTestUser(t, "stranger7", models.RoleClient)
	service := createTestService(t, provider.ID, 60.00)
	booking := createTestBooking(t, router, clientToken, service.ID)

	path := "/api/bookings/" + itoa(booking.ID)

	for _, token := range []string{clientToken, providerToken} {
		w := doRequest(t, router, http.MethodGet, path, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for booking party, got %d", w.Code)
		}
	}

	w := doRequest(t, router, http.MethodGet, path, strangerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for third party, got %d", w.Code)
	}
}

func TestListBookingTransactions(t *testing.T) {
	router := setupTest(t)
	provider, providerToken := createTestUser(t, "provider8", models.RoleProvider)
	_, clientToken := createTestUser(t, "client8", models.RoleClient)
	service := createTestService(t, provider.ID, 40.00)
	booking := createTestBooking(t, router, clientToken, service.ID)

	doRequest(t, router, http.MethodPost, "/api/bookings/"+itoa(booking.ID)+"/complete", providerToken, nil)

	w := doRequest(t, router, http.MethodGet, "/api/bookings/"+itoa(booking.ID)+"/transactions", clientToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	transactions, _ := body["transactions"].([]interface{})
	if len(transactions) != 2 {
		t.Fatalf("expected hold + transfer rows, got %d", len(transactions))
	}
}

func TestProviderDashboardStats(t *testing.T) {
	router := setupTest(t)
	provider, providerToken := createTestUser(t, "provider9", models.RoleProvider)
	_, clientToken := createTestUser(t, "client9", models.RoleClient)
	service := createTestService(t, provider.ID, 100.00)
	booking := createTestBooking(t, router, clientToken, service.ID)

	doRequest(t, router, http.MethodPost, "/api/bookings/"+itoa(booking.ID)+"/complete", providerToken, nil)

	w := doRequest(t, router, http.MethodGet, "/api/stats/dashboard", providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	stats := decodeBody(t, w)
	if stats["total_services"].(float64) != 1 {
		t.Fatalf("expected 1 service, got %v", stats["total_services"])
	}
	if stats["completed_bookings"].(float64) != 1 {
		t.Fatalf("expected 1 completed booking, got %v", stats["completed_bookings"])
	}
	if stats["total_earnings"].(float64) != 95.00 {
		t.Fatalf("expected earnings 95.00, got %v", stats["total_earnings"])
	}

	// Client sees the client-shaped stats
	w = doRequest(t, router, http.MethodGet, "/api/stats/dashboard", clientToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	stats = decodeBody(t, w)
	if stats["total_bookings"].(float64) != 1 {
		t.Fatalf("expected 1 booking for client, got %v", stats["total_bookings"])
	}
}
