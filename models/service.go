package models

import (
	"time"
)

// Service represents a home service offered by a provider
type Service struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProviderID   uint      `json:"provider_id" gorm:"not null;index"`
	ServiceType  string    `json:"service_type" gorm:"type:varchar(100);not null;index"`
	Title        string    `json:"title" gorm:"type:varchar(200);not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Price        float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	LocationArea string    `json:"location_area" gorm:"type:varchar(200)"`
	CovidSafe    bool      `json:"covid_safe" gorm:"default:true"`
	MaxDistance  int       `json:"max_distance" gorm:"default:10"` // in km
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Provider User `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
}

// ServiceRequest represents the request structure for creating/updating services
type ServiceRequest struct {
	ServiceType  string  `json:"service_type" binding:"required"`
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	LocationArea string  `json:"location_area"`
	CovidSafe    *bool   `json:"covid_safe"`
	MaxDistance  int     `json:"max_distance"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}
