package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// StockMovement logs every change to Product.TotalItems, in base pieces.
// Quantity is signed: restocks are positive, sales negative.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Type      MovementType    `gorm:"type:varchar(10);not null" json:"type"`
	Quantity  decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	SaleID    *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	Note      string          `json:"note"`
}
