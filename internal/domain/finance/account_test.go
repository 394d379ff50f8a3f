package finance

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountType_ListPath(t *testing.T) {
	tests := []struct {
		t    AccountType
		want string
	}{
		{AccountTypeAll, "/erp/accounts/accounts"},
		{AccountTypeMain, "/erp/accounts/main-accounts"},
		{AccountTypeSub, "/erp/accounts/sub-accounts"},
		{AccountTypeLedger, "/erp/accounts/ledger-accounts"},
		{AccountType("bogus"), "/erp/accounts/accounts"},
	}
	for _, tt := range tests {
		t.Run(string(tt.t), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.t.ListPath())
		})
	}
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType("")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeAll, got)

	got, err = ParseAccountType(" Ledger ")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeLedger, got)

	_, err = ParseAccountType("equity")
	assert.Error(t, err)
}

func TestAccountBalance_DecodesServerAmounts(t *testing.T) {
	raw := `{"account_id":4,"account_name":"Cash","debit":"1500.25","credit":"200.05","balance":"1300.20"}`

	var b AccountBalance
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	assert.True(t, b.Balance.Equal(decimal.RequireFromString("1300.2")))
	assert.True(t, b.Debit.Sub(b.Credit).Equal(b.Balance))
}
