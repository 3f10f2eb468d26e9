package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint `gorm:"not null;index" json:"client_id"`
	Client   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	BarberID uint   `gorm:"not null;index:idx_appointments_barber_slot" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	ServiceID uint    `gorm:"not null" json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	// Canonical "2006-01-02" and "15:04" strings, so lexical order is chronological.
	Date string `gorm:"column:slot_date;size:10;not null;index:idx_appointments_barber_slot" json:"date"`
	Time string `gorm:"column:slot_time;size:5;not null;index:idx_appointments_barber_slot" json:"time"`

	Status        string           `gorm:"size:20;not null;default:'pending'" json:"status"`
	FinalValue    *decimal.Decimal `gorm:"type:numeric(10,2)" json:"final_value"`
	PaymentMethod string           `gorm:"size:100" json:"payment_method"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
