package models

import (
	"time"
)

const TestResultPositive = "positive"

// HealthDeclaration is a self-reported health status entry. A positive test
// result triggers the contact-event lookup for the declaring user.
type HealthDeclaration struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"not null;index"`
	DeclarationDate string    `json:"declaration_date" gorm:"type:varchar(10);not null"`
	Symptoms        *string   `json:"symptoms" gorm:"type:text"`
	Temperature     *float64  `json:"temperature" gorm:"type:decimal(4,1)"`
	CovidTestResult string    `json:"covid_test_result" gorm:"size:20;not null"`
	DeclarationHash string    `json:"declaration_hash" gorm:"size:64;uniqueIndex;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the HealthDeclaration model
func (HealthDeclaration) TableName() string {
	return "health_declarations"
}
