package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is written once per checkout and never modified afterwards.
// Totals are stored at creation time, not recomputed from the lines.
type Sale struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	Items       []SaleItem      `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"total_amount"`
	TotalProfit decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"total_profit"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	CreatedBy   string          `gorm:"type:varchar(255)" json:"created_by"`
}

// SaleItem snapshots the product as it was at sale time. ProductID is a plain
// reference: the product may later change or disappear.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position  int             `gorm:"not null" json:"position"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(255)" json:"name"`
	Qty       decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"qty"`
	Mode      SaleMode        `gorm:"type:varchar(10);not null" json:"mode"`
	SoldPrice decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"sold_price"`
	Profit    decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"profit"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
