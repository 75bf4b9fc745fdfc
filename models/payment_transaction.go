package models

import (
	"time"
)

type TransactionType string

const (
	TransactionPaymentHeld        TransactionType = "payment_held"
	TransactionTransferToProvider TransactionType = "transfer_to_provider"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusHeld      TransactionStatus = "held"
	TransactionStatusCompleted TransactionStatus = "completed"
)

// PaymentTransaction is one row in the append-only monetary ledger of a
// booking. Rows are inserted and never mutated.
type PaymentTransaction struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	BookingID        uint              `json:"booking_id" gorm:"not null;index"`
	TransactionType  TransactionType   `json:"transaction_type" gorm:"type:varchar(30);not null;check:transaction_type IN ('payment_held','transfer_to_provider')"`
	Amount           float64           `json:"amount" gorm:"type:decimal(10,2);not null"`
	PaymentReference string            `json:"payment_reference" gorm:"size:64"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Description      string            `json:"description" gorm:"type:text"`
	CreatedAt        time.Time         `json:"created_at" gorm:"autoCreateTime"`
	CompletedAt      *time.Time        `json:"completed_at"`

	// Relationships
	Booking Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

// TableName specifies the table name for the PaymentTransaction model
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
