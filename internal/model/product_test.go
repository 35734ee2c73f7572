package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDeductionTable(t *testing.T) {
	cases := []struct {
		name   string
		format BuyFormat
		q1, q2 int
		mode   SaleMode
		qty    string
		want   string
	}{
		{"carton bulk", FormatCarton, 10, 5, ModeBulk, "1", "50"},
		{"carton bulk fractional", FormatCarton, 10, 5, ModeBulk, "0.5", "25"},
		{"carton sub", FormatCarton, 10, 5, ModeSub, "2", "10"},
		{"carton unit", FormatCarton, 10, 5, ModeUnit, "7", "7"},
		{"packet bulk", FormatPacket, 12, 0, ModeBulk, "2", "24"},
		{"packet sub is the packet", FormatPacket, 12, 3, ModeSub, "2", "24"},
		{"bag sub is the bag", FormatBag, 25, 0, ModeSub, "1", "25"},
		{"piece bulk", FormatPiece, 6, 0, ModeBulk, "2", "12"},
		{"piece sub", FormatPiece, 6, 4, ModeSub, "2", "8"},
		{"missing multipliers", FormatCarton, 0, 0, ModeBulk, "3", "3"},
		{"negative multiplier reads as one", FormatPacket, -4, 0, ModeBulk, "3", "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{BuyFormat: tc.format, SubQty1: tc.q1, SubQty2: tc.q2}
			got, err := p.Deduction(tc.mode, d(tc.qty))
			require.NoError(t, err)
			require.True(t, d(tc.want).Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

func TestCartonBulkIsQtyTimesBothMultipliers(t *testing.T) {
	for q1 := 1; q1 <= 12; q1 += 3 {
		for q2 := 1; q2 <= 24; q2 += 5 {
			p := Product{BuyFormat: FormatCarton, SubQty1: q1, SubQty2: q2}
			for _, qty := range []string{"1", "2", "3.5"} {
				got, err := p.Deduction(ModeBulk, d(qty))
				require.NoError(t, err)
				want := d(qty).Mul(decimal.NewFromInt(int64(q1 * q2)))
				require.True(t, want.Equal(got))
			}
		}
	}
}

func TestUnitModeNeverConverts(t *testing.T) {
	for _, f := range BuyFormats {
		p := Product{BuyFormat: f, SubQty1: 9, SubQty2: 7}
		got, err := p.Deduction(ParseSaleMode("whatever"), d("4"))
		require.NoError(t, err)
		require.True(t, d("4").Equal(got), "format %s", f)
	}
}

func TestUnknownBuyFormatIsAnError(t *testing.T) {
	p := Product{BuyFormat: "Crate", SubQty1: 2}
	for _, m := range []SaleMode{ModeUnit, ModeSub, ModeBulk} {
		_, err := p.Deduction(m, d("1"))
		require.ErrorIs(t, err, ErrUnknownBuyFormat)
	}
	_, err := p.MainFormatMultiplier()
	require.ErrorIs(t, err, ErrUnknownBuyFormat)
}

func TestMainFormatMultiplier(t *testing.T) {
	cases := map[BuyFormat]string{
		FormatCarton: "50",
		FormatPacket: "10",
		FormatBag:    "10",
		FormatPiece:  "1",
	}
	for f, want := range cases {
		p := Product{BuyFormat: f, SubQty1: 10, SubQty2: 5}
		got, err := p.MainFormatMultiplier()
		require.NoError(t, err)
		require.True(t, d(want).Equal(got), "format %s", f)
	}
}

func TestParseSaleMode(t *testing.T) {
	require.Equal(t, ModeBulk, ParseSaleMode(" Bulk "))
	require.Equal(t, ModeSub, ParseSaleMode("SUB"))
	require.Equal(t, ModeUnit, ParseSaleMode(""))
	require.Equal(t, ModeUnit, ParseSaleMode("piece"))
}

func TestParseBuyFormat(t *testing.T) {
	f, err := ParseBuyFormat("carton")
	require.NoError(t, err)
	require.Equal(t, FormatCarton, f)

	_, err = ParseBuyFormat("box")
	require.ErrorIs(t, err, ErrUnknownBuyFormat)
}

func TestDisplayName(t *testing.T) {
	p := Product{ProdName: "Sugar", UnitVal: d("1"), UnitType: "kg"}
	require.Equal(t, "Sugar (1 kg)", p.DisplayName())
}
