package model

import (
	"errors"
	"strings"
)

// BuyFormat is the packaging tier a product is purchased and stocked in.
type BuyFormat string

const (
	FormatPiece  BuyFormat = "Piece"
	FormatPacket BuyFormat = "Packet"
	FormatBag    BuyFormat = "Bag"
	FormatCarton BuyFormat = "Carton"
)

// BuyFormats lists every supported packaging tier.
var BuyFormats = []BuyFormat{FormatPiece, FormatPacket, FormatBag, FormatCarton}

var ErrUnknownBuyFormat = errors.New("unknown buy format, use Piece, Packet, Bag or Carton")

// ParseBuyFormat matches case-insensitively against the closed set.
func ParseBuyFormat(s string) (BuyFormat, error) {
	s = strings.TrimSpace(s)
	for _, f := range BuyFormats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", ErrUnknownBuyFormat
}

// Valid reports whether f is one of the supported formats.
func (f BuyFormat) Valid() bool {
	for _, known := range BuyFormats {
		if f == known {
			return true
		}
	}
	return false
}

// SaleMode is the granularity a checkout line is sold in.
type SaleMode string

const (
	ModeUnit SaleMode = "unit"
	ModeSub  SaleMode = "sub"
	ModeBulk SaleMode = "bulk"
)

// ParseSaleMode never fails: anything that is not bulk or sub sells by the piece.
func ParseSaleMode(s string) SaleMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeBulk):
		return ModeBulk
	case string(ModeSub):
		return ModeSub
	default:
		return ModeUnit
	}
}
