package currency

import (
	"testing"

	"github.com/amirasaad/fxconv/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ListSupported(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 10, r.Count())
	assert.Equal(t, money.Supported, r.ListSupported())

	// callers get a copy
	list := r.ListSupported()
	list[0] = "XXX"
	assert.Equal(t, money.USD, r.ListSupported()[0])
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		input   string
		want    money.Code
		wantErr error
	}{
		{"supported", "EUR", money.EUR, nil},
		{"lower case normalized", "gbp", money.GBP, nil},
		{"padded", " jpy ", money.JPY, nil},
		{"malformed", "EURO", "", ErrInvalidCurrencyCode},
		{"empty", "", "", ErrInvalidCurrencyCode},
		{"well formed but unsupported", "KWD", "", ErrUnsupportedCurrency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Validate(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	cur, ok := r.Get(money.INR)
	require.True(t, ok)
	assert.Equal(t, "₹", cur.Symbol)

	_, ok = r.Get("KWD")
	assert.False(t, ok)

	all := r.List()
	require.Len(t, all, 10)
	assert.Equal(t, money.MXN, all[9].Code)
}
