package models

import (
	"time"

	"gorm.io/datatypes"
)

// WorkingPeriod is a "HH:MM" to "HH:MM" interval inside a working day.
type WorkingPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingHours maps a weekday name ("monday".."sunday") to its periods.
type WorkingHours map[string][]WorkingPeriod

type Barber struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Specialties  string                           `gorm:"type:text" json:"specialties"`
	WorkingHours datatypes.JSONType[WorkingHours] `json:"working_hours"`
	DaysOff      datatypes.JSONSlice[string]      `json:"days_off"`

	Services []Service `gorm:"many2many:barber_services;" json:"services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
