package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/club-billing/models"
)

func TestLineItemTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		unitPrice int64
		want      int64
		wantErr   error
	}{
		{name: "single unit", quantity: 1, unitPrice: 1500, want: 1500},
		{name: "multiple units", quantity: 3, unitPrice: 700, want: 2100},
		{name: "free service", quantity: 2, unitPrice: 0, want: 0},
		{name: "zero quantity", quantity: 0, unitPrice: 500, wantErr: ErrQuantityNotPositive},
		{name: "negative quantity", quantity: -2, unitPrice: 500, wantErr: ErrQuantityNotPositive},
		{name: "negative price", quantity: 1, unitPrice: -100, wantErr: ErrNegativeUnitPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LineItemTotal(tt.quantity, tt.unitPrice)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionRunningTotal(t *testing.T) {
	assert.Equal(t, int64(0), SessionRunningTotal(nil))
	assert.Equal(t, int64(0), SessionRunningTotal([]models.SessionLineItem{}))

	items := []models.SessionLineItem{
		{Total: 1500},
		{Total: 700},
		{Total: 0},
	}
	assert.Equal(t, int64(2200), SessionRunningTotal(items))
}

func TestSessionRunningTotalUsesStoredTotals(t *testing.T) {
	// Сумма считается по сохранённым итогам, не по quantity*unitPrice:
	// позиция могла быть продана по старой цене каталога.
	items := []models.SessionLineItem{
		{Quantity: 2, UnitPrice: 9999, Total: 1000},
	}
	assert.Equal(t, int64(1000), SessionRunningTotal(items))
}
