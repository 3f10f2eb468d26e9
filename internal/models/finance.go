package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LedgerIncome  = "income"
	LedgerExpense = "expense"

	PayoutPaid   = "paid"
	PayoutUnpaid = "unpaid"
)

// LedgerEntry is one cash movement of the shop.
type LedgerEntry struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Kind           string          `gorm:"size:20;not null;index" json:"kind"`
	Description    string          `gorm:"type:text" json:"description"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	OccurredAt     time.Time       `gorm:"not null;index" json:"occurred_at"`
	PaymentMethod  string          `gorm:"size:100" json:"payment_method"`
	AssociatedWith string          `gorm:"size:100" json:"associated_with"`
}

// Payout is the amount owed to a barber for a YYYY-MM period.
type Payout struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	BarberID uint            `gorm:"not null;uniqueIndex:ux_payouts_barber_period" json:"barber_id"`
	Barber   Barber          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Period   string          `gorm:"size:7;not null;uniqueIndex:ux_payouts_barber_period" json:"period"`
	Amount   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status   string          `gorm:"size:20;not null;default:'unpaid'" json:"status"`
	Notes    string          `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
