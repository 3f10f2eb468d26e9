package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductKindSale     = "sale"
	ProductKindInternal = "internal"
)

func IsValidProductKind(kind string) bool {
	return kind == ProductKindSale || kind == ProductKindInternal
}

type Product struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Name      string           `gorm:"size:255;not null" json:"name"`
	Kind      string           `gorm:"size:20;not null" json:"kind"`
	Quantity  int              `gorm:"not null" json:"quantity"`
	Unit      string           `gorm:"size:50" json:"unit"`
	UnitCost  *decimal.Decimal `gorm:"type:numeric(10,2)" json:"unit_cost"`
	SalePrice *decimal.Decimal `gorm:"type:numeric(10,2)" json:"sale_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductSale struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Product   Product `json:"-"`
	ClientID  *uint   `gorm:"index" json:"client_id"`
	Client    *User   `json:"-"`

	Quantity   int             `gorm:"not null" json:"quantity"`
	TotalValue decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_value"`
	SoldAt     time.Time       `gorm:"not null;index" json:"sold_at"`
}
