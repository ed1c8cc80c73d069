package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoles(t *testing.T) {
	assert.True(t, Valid(Buyer))
	assert.True(t, Valid(TradingAdmin))
	assert.False(t, Valid("admin"))

	assert.True(t, IsTradingStaff(SuperAdmin))
	assert.False(t, IsTradingStaff(InvestmentAdmin))
	assert.True(t, IsInvestmentStaff(InvestmentAdmin))
	assert.False(t, IsAdmin(Seller))
}
