package models

import (
	"time"
)

// ContactEvent pairs two anonymous ids for a single encounter. One row is
// written per booking; the encounter token doubles as the booking's
// contact-trace token. Append-only.
type ContactEvent struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	AnonymousID1    string    `json:"anonymous_id_1" gorm:"size:64;not null;index"`
	AnonymousID2    string    `json:"anonymous_id_2" gorm:"size:64;not null;index"`
	EncounterToken  string    `json:"encounter_token" gorm:"size:64;uniqueIndex;not null"`
	EncounterDate   string    `json:"encounter_date" gorm:"type:varchar(10);not null"`
	DurationMinutes int       `json:"duration_minutes" gorm:"default:30"`
	ProximityLevel  string    `json:"proximity_level" gorm:"size:20;default:'close'"`
	LocationHash    string    `json:"-" gorm:"size:64;not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the ContactEvent model
func (ContactEvent) TableName() string {
	return "contact_events"
}
