package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountNumber_AcceptsStringAndNumber(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"accountNumber":"202507129384"}`), &u))
	assert.Equal(t, AccountNumber("202507129384"), u.AccountNumber)

	require.NoError(t, json.Unmarshal([]byte(`{"accountNumber":202507129384}`), &u))
	assert.Equal(t, AccountNumber("202507129384"), u.AccountNumber)

	require.NoError(t, json.Unmarshal([]byte(`{"accountNumber":null}`), &u))
	assert.Equal(t, AccountNumber(""), u.AccountNumber)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"50000", false},
		{"  50000.50 ", false},
		{"0.01", false},
		{"", true},
		{"abc", true},
		{"0", true},
		{"-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.GreaterThan(decimal.Zero))
		})
	}
}

func TestCheckAgainstBalance(t *testing.T) {
	balance := decimal.NewFromInt(100000)
	assert.NoError(t, CheckAgainstBalance(decimal.NewFromInt(100000), balance))
	assert.ErrorIs(t, CheckAgainstBalance(decimal.NewFromInt(100001), balance), ErrExceedsBalance)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50,000", FormatAmount(decimal.NewFromInt(50000)))
	assert.Equal(t, "1,000,000", FormatAmount(decimal.NewFromInt(1000000)))
	assert.Equal(t, "999", FormatAmount(decimal.NewFromInt(999)))
	assert.Equal(t, "12,345.67", FormatAmount(decimal.RequireFromString("12345.67")))
	assert.Equal(t, "-7,500", FormatAmount(decimal.NewFromInt(-7500)))
}

func TestNewAccountNumber(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	num := NewAccountNumber(now, 2384)
	assert.Equal(t, AccountNumber("202609013384"), num)
	assert.Len(t, string(num), 12)
}

func TestTransactionRecord_Involves(t *testing.T) {
	rec := TransactionRecord{AccountSourceID: "1", AccountDestinationID: "2"}
	assert.True(t, rec.Involves("1"))
	assert.True(t, rec.Involves("2"))
	assert.False(t, rec.Involves("3"))
}
