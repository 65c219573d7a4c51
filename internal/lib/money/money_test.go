package money_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin-karani/subscription-manager-api/internal/lib/money"
)

func TestParsePrice_ValidValues(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "обычная цена",
			raw:  "9.99",
			want: "9.99",
		},
		{
			name: "ноль",
			raw:  "0.00",
			want: "0.00",
		},
		{
			name: "ноль без дробной части",
			raw:  "0",
			want: "0.00",
		},
		{
			name: "целое число",
			raw:  "100",
			want: "100.00",
		},
		{
			name: "один знак после запятой",
			raw:  "9.9",
			want: "9.90",
		},
		{
			name: "лишние знаки округляются",
			raw:  "19.999",
			want: "20.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ParsePrice(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, money.Format(got))
		})
	}
}

func TestParsePrice_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "пустая строка",
			raw:  "",
		},
		{
			name: "не число",
			raw:  "abc",
		},
		{
			name: "отрицательная сумма",
			raw:  "-1.00",
		},
		{
			name: "две точки",
			raw:  "9.9.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := money.ParsePrice(tt.raw)
			assert.Error(t, err)
		})
	}
}
