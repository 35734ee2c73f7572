package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a stock-keeping unit. Its identity is (ProdName, UnitVal, UnitType).
//
// TotalItems is always counted in base pieces, MinLimit in main-format units.
// For Carton, SubQty1 is packets per carton and SubQty2 pieces per packet;
// for Packet and Bag, SubQty1 is pieces per packet.
type Product struct {
	BaseModel
	ProdName  string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_product_identity" json:"prod_name" validate:"required"`
	UnitVal   decimal.Decimal `gorm:"type:decimal(12,3);not null;uniqueIndex:idx_product_identity" json:"unit_val"`
	UnitType  string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_product_identity" json:"unit_type" validate:"required"`
	BuyFormat BuyFormat       `gorm:"type:varchar(10);not null;default:'Piece'" json:"buy_format" validate:"required,oneof=Piece Packet Bag Carton"`
	SubQty1   int             `gorm:"default:0" json:"sub_qty1" validate:"gte=0"`
	SubQty2   int             `gorm:"default:0" json:"sub_qty2" validate:"gte=0"`

	TotalItems decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"total_items"`
	BuyPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"buy_price" validate:"gte=0"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"unit_cost" validate:"gte=0"`
	SellPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"sell_price" validate:"gte=0"`
	Profit     decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"profit"`
	MinLimit   decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"min_limit" validate:"gte=0"`
}

// PackMultipliers returns (SubQty1, SubQty2) with missing or zero values read as 1.
func (p *Product) PackMultipliers() (decimal.Decimal, decimal.Decimal) {
	q1, q2 := int64(p.SubQty1), int64(p.SubQty2)
	if q1 <= 0 {
		q1 = 1
	}
	if q2 <= 0 {
		q2 = 1
	}
	return decimal.NewFromInt(q1), decimal.NewFromInt(q2)
}

// Deduction converts a sale quantity in the given mode into base pieces.
func (p *Product) Deduction(mode SaleMode, qty decimal.Decimal) (decimal.Decimal, error) {
	q1, q2 := p.PackMultipliers()

	switch mode {
	case ModeBulk:
		switch p.BuyFormat {
		case FormatCarton:
			return qty.Mul(q1).Mul(q2), nil
		case FormatPiece, FormatPacket, FormatBag:
			return qty.Mul(q1), nil
		}
	case ModeSub:
		switch p.BuyFormat {
		case FormatPacket, FormatBag:
			// the sub-unit of a packet is the packet itself
			return qty.Mul(q1), nil
		case FormatPiece, FormatCarton:
			return qty.Mul(q2), nil
		}
	case ModeUnit:
		if p.BuyFormat.Valid() {
			return qty, nil
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown sale mode %q", mode)
	}
	return decimal.Zero, fmt.Errorf("product %s: %w (%q)", p.ID, ErrUnknownBuyFormat, p.BuyFormat)
}

// MainFormatMultiplier is the number of base pieces in one main-format unit.
func (p *Product) MainFormatMultiplier() (decimal.Decimal, error) {
	q1, q2 := p.PackMultipliers()

	switch p.BuyFormat {
	case FormatCarton:
		return q1.Mul(q2), nil
	case FormatPacket, FormatBag:
		return q1, nil
	case FormatPiece:
		return decimal.NewFromInt(1), nil
	}
	return decimal.Zero, fmt.Errorf("product %s: %w (%q)", p.ID, ErrUnknownBuyFormat, p.BuyFormat)
}

// DisplayName renders the identity triplet, e.g. "Sugar (1 kg)".
func (p *Product) DisplayName() string {
	return fmt.Sprintf("%s (%s %s)", p.ProdName, p.UnitVal.String(), p.UnitType)
}
