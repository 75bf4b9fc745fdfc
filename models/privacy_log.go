package models

import (
	"time"
)

// Privacy action labels
const (
	ActionUserRegistered       = "USER_REGISTERED"
	ActionUserLogin            = "USER_LOGIN"
	ActionServiceCreated       = "SERVICE_CREATED"
	ActionBookingCreated       = "BOOKING_CREATED"
	ActionOTPVerified          = "OTP_VERIFIED"
	ActionPaymentTransferred   = "PAYMENT_TRANSFERRED"
	ActionPositiveTestReported = "COVID_POSITIVE_REPORTED"
)

// PrivacyLog is the append-only audit trail of sensitive actions. Rows are
// never updated or deleted.
type PrivacyLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Action    string    `json:"action" gorm:"size:100;not null"`
	Resource  *string   `json:"resource" gorm:"size:100"`
	IPHash    string    `json:"-" gorm:"size:64"`
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the PrivacyLog model
func (PrivacyLog) TableName() string {
	return "privacy_logs"
}
