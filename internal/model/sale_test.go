package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func columnType(t *testing.T, dest interface{}, field string) string {
	t.Helper()
	s, err := schema.Parse(dest, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	f := s.LookUpField(field)
	require.NotNil(t, f, field)
	return string(f.DataType)
}

// Sale totals and line prices must hold every digit a per-piece cost can produce.
func TestSaleMoneyColumnsKeepUnitCostScale(t *testing.T) {
	require.Equal(t, "decimal(12,4)", columnType(t, &Product{}, "UnitCost"))

	require.Equal(t, "decimal(14,4)", columnType(t, &Sale{}, "TotalAmount"))
	require.Equal(t, "decimal(14,4)", columnType(t, &Sale{}, "TotalProfit"))
	require.Equal(t, "decimal(12,4)", columnType(t, &SaleItem{}, "SoldPrice"))
	require.Equal(t, "decimal(14,4)", columnType(t, &SaleItem{}, "Profit"))
}
