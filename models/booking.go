package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPaidHeld    PaymentStatus = "paid_held"
	PaymentStatusTransferred PaymentStatus = "transferred"
)

// Booking is the shared ledger row for one reservation. The client creates it;
// only the assigned provider may verify the OTP or mark it complete.
type Booking struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	ServiceID         uint          `json:"service_id" gorm:"not null;index"`
	ClientID          uint          `json:"client_id" gorm:"not null;index"`
	ProviderID        uint          `json:"provider_id" gorm:"not null;index"`
	BookingDate       string        `json:"booking_date" gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	BookingTime       string        `json:"booking_time" gorm:"size:20;not null"`
	Status            BookingStatus `json:"status" gorm:"type:varchar(20);default:'pending';check:status IN ('pending','confirmed','completed')"`
	LocationHash      string        `json:"-" gorm:"size:64;not null"`
	ContactTraceToken string        `json:"contact_trace_token" gorm:"size:64;uniqueIndex;not null"`
	PrivacyLevel      string        `json:"privacy_level" gorm:"size:20;default:'standard'"`
	OTPCode           string        `json:"otp_code" gorm:"size:6"`
	OTPVerified       bool          `json:"otp_verified" gorm:"default:false"`
	OTPGeneratedAt    *time.Time    `json:"otp_generated_at"`
	PaymentStatus     PaymentStatus `json:"payment_status" gorm:"type:varchar(20);default:'pending';check:payment_status IN ('pending','paid_held','transferred')"`
	Amount            float64       `json:"amount" gorm:"type:decimal(10,2)"`
	PlatformFee       float64       `json:"platform_fee" gorm:"type:decimal(10,2)"`
	ProviderAmount    float64       `json:"provider_amount" gorm:"type:decimal(10,2)"`
	CardLast4         string        `json:"card_last4" gorm:"size:4"`
	CardType          string        `json:"card_type" gorm:"size:30"`
	PaymentReference  string        `json:"payment_reference" gorm:"size:64"`
	PaidAt            *time.Time    `json:"paid_at"`
	TransferredAt     *time.Time    `json:"transferred_at"`
	CompletedAt       *time.Time    `json:"completed_at"`
	CreatedAt         time.Time     `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Service  Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Client   User    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Provider User    `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

// TableName specifies the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// IsTerminal reports whether the booking reached its terminal state
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted && b.PaymentStatus == PaymentStatusTransferred
}
