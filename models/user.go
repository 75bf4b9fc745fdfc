package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleClient   UserRole = "client"
	RoleProvider UserRole = "provider"
)

type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusPositive HealthStatus = "positive"
)

type User struct {
	ID                uint         `json:"id" gorm:"primaryKey"`
	Username          string       `json:"username" gorm:"size:100;uniqueIndex;not null"`
	EmailHash         *string      `json:"-" gorm:"size:64"`
	PhoneHash         *string      `json:"-" gorm:"size:64"`
	PasswordHash      string       `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Role              UserRole     `json:"role" gorm:"type:varchar(20);not null;check:role IN ('client','provider')"`
	AnonymousID       string       `json:"anonymous_id" gorm:"size:64;uniqueIndex;not null"`
	VaccinationStatus *string      `json:"vaccination_status" gorm:"size:50"`
	HealthStatus      HealthStatus `json:"health_status" gorm:"type:varchar(20);default:'healthy'"`
	CreatedAt         time.Time    `json:"created_at" gorm:"autoCreateTime"`
	LastLogin         *time.Time   `json:"last_login"`

	// Relationships
	Services []Service `json:"services,omitempty" gorm:"foreignKey:ProviderID"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.HealthStatus == "" {
		u.HealthStatus = HealthStatusHealthy
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleClient, RoleProvider:
		return true
	default:
		return false
	}
}

// IsProvider checks if the user is a provider
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider
}

// IsClient checks if the user is a client
func (u *User) IsClient() bool {
	return u.Role == RoleClient
}
