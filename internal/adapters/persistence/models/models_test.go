package models

import (
	"testing"
	"time"

	"salescrm/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ============================================================
// Valuation
// ============================================================

func TestOpportunityProduct_LineTotals(t *testing.T) {
	line := &OpportunityProduct{
		Quantity:           3,
		UnitPrice:          dec("100"),
		DiscountPercentage: dec("10"),
		TaxRate:            dec("8"),
	}

	assert.True(t, line.Subtotal().Equal(dec("300")), "subtotal = %s", line.Subtotal())
	assert.True(t, line.DiscountAmount().Equal(dec("30")), "discount = %s", line.DiscountAmount())
	assert.True(t, line.TotalAfterDiscount().Equal(dec("270")), "after discount = %s", line.TotalAfterDiscount())
	assert.True(t, line.TaxAmount().Equal(dec("21.6")), "tax = %s", line.TaxAmount())
	assert.True(t, line.Total().Equal(dec("291.6")), "total = %s", line.Total())
}

func TestOpportunityProduct_ZeroDiscountAndTax(t *testing.T) {
	line := &OpportunityProduct{Quantity: 2, UnitPrice: dec("49.99")}

	assert.True(t, line.Total().Equal(dec("99.98")))
	assert.True(t, line.DiscountAmount().IsZero())
	assert.True(t, line.TaxAmount().IsZero())
}

func TestOpportunityProduct_TotalsAreStableAcrossReads(t *testing.T) {
	line := &OpportunityProduct{
		Quantity:           7,
		UnitPrice:          dec("33.33"),
		DiscountPercentage: dec("12.5"),
		TaxRate:            dec("18"),
	}

	first := line.Total()
	for i := 0; i < 5; i++ {
		assert.True(t, first.Equal(line.Total()))
	}
}

func TestOpportunity_WeightedValue(t *testing.T) {
	opp := &Opportunity{Value: dec("1000.00"), Probability: 40}
	assert.True(t, opp.WeightedValue().Equal(dec("400.00")), "weighted = %s", opp.WeightedValue())

	opp.Probability = 0
	assert.True(t, opp.WeightedValue().IsZero())

	opp.Probability = 100
	assert.True(t, opp.WeightedValue().Equal(dec("1000.00")))
}

func TestProduct_ProfitMargin(t *testing.T) {
	p := &Product{UnitPrice: dec("150")}

	// no cost price -> zero, no division by zero
	assert.True(t, p.ProfitMargin().IsZero())

	p.CostPrice = decimal.NewNullDecimal(decimal.Zero)
	assert.True(t, p.ProfitMargin().IsZero())

	p.CostPrice = decimal.NewNullDecimal(dec("100"))
	assert.True(t, p.ProfitMargin().Equal(dec("50")), "margin = %s", p.ProfitMargin())

	p.CostPrice = decimal.NewNullDecimal(dec("120"))
	assert.True(t, p.ProfitMargin().Equal(dec("25.00")), "margin = %s", p.ProfitMargin())
}

// ============================================================
// Pipeline stage effects on the record
// ============================================================

func TestOpportunity_ApplyStage_OpenStages(t *testing.T) {
	opp := &Opportunity{
		Value:       dec("500"),
		Stage:       domain.StageProspecting,
		Status:      domain.OpportunityOpen,
		Probability: 10,
	}

	opp.ApplyStage(domain.StageProposal)

	assert.Equal(t, domain.StageProposal, opp.Stage)
	assert.Equal(t, 60, opp.Probability)
	assert.Equal(t, domain.OpportunityOpen, opp.Status)
	assert.Nil(t, opp.ActualCloseDate)
}

func TestOpportunity_ApplyStage_ClosedWon(t *testing.T) {
	opp := &Opportunity{Stage: domain.StageNegotiation, Status: domain.OpportunityOpen, Probability: 80}

	opp.ApplyStage(domain.StageClosedWon)

	assert.Equal(t, 100, opp.Probability)
	assert.Equal(t, domain.OpportunityWon, opp.Status)
	require.NotNil(t, opp.ActualCloseDate)
	assert.WithinDuration(t, time.Now(), *opp.ActualCloseDate, time.Minute)
}

func TestOpportunity_ApplyStage_ClosedLost(t *testing.T) {
	opp := &Opportunity{Stage: domain.StageProposal, Status: domain.OpportunityOpen, Probability: 60}

	opp.ApplyStage(domain.StageClosedLost)

	assert.Equal(t, 0, opp.Probability)
	assert.Equal(t, domain.OpportunityLost, opp.Status)
	require.NotNil(t, opp.ActualCloseDate)
}

func TestOpportunity_IsOverdue(t *testing.T) {
	yesterday := time.Now().Add(-24 * time.Hour)
	tomorrow := time.Now().Add(24 * time.Hour)

	opp := &Opportunity{Status: domain.OpportunityOpen, ExpectedCloseDate: &yesterday}
	assert.True(t, opp.IsOverdue())

	opp.ExpectedCloseDate = &tomorrow
	assert.False(t, opp.IsOverdue())

	opp.ExpectedCloseDate = &yesterday
	opp.Status = domain.OpportunityWon
	assert.False(t, opp.IsOverdue(), "closed opportunities are never overdue")

	opp.Status = domain.OpportunityOpen
	opp.ExpectedCloseDate = nil
	assert.False(t, opp.IsOverdue())
}

// ============================================================
// Account security guard
// ============================================================

func TestUser_RecordFailedLogin_LocksAtLimit(t *testing.T) {
	user := &User{Status: domain.UserActive}

	for i := 0; i < MaxFailedLogins-1; i++ {
		user.RecordFailedLogin()
		assert.False(t, user.IsLocked(), "attempt %d must not lock", i+1)
	}

	user.RecordFailedLogin()

	assert.Equal(t, MaxFailedLogins, user.FailedLoginAttempts)
	assert.True(t, user.IsLocked())
	require.NotNil(t, user.LockedUntil)
	assert.WithinDuration(t, time.Now().Add(LockoutDuration), *user.LockedUntil, time.Minute)
}

func TestUser_RecordSuccessfulLogin_ResetsGuard(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)
	user := &User{
		Status:              domain.UserActive,
		FailedLoginAttempts: 4,
		LockedUntil:         &until,
	}

	user.RecordSuccessfulLogin("203.0.113.7")

	assert.Zero(t, user.FailedLoginAttempts)
	assert.Nil(t, user.LockedUntil)
	assert.False(t, user.IsLocked())
	assert.Equal(t, "203.0.113.7", user.LastLoginIP)
	require.NotNil(t, user.LastLoginAt)
}

func TestUser_LockSelfExpires(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	user := &User{FailedLoginAttempts: MaxFailedLogins, LockedUntil: &past}

	// the predicate turns false on its own; counter is untouched
	assert.False(t, user.IsLocked())
	assert.Equal(t, MaxFailedLogins, user.FailedLoginAttempts)
}

func TestUser_IsActive(t *testing.T) {
	user := &User{Status: domain.UserActive}
	assert.True(t, user.IsActive())

	user.Status = domain.UserInactive
	assert.False(t, user.IsActive())

	user.Status = domain.UserSuspended
	assert.False(t, user.IsActive())
}

// ============================================================
// Capability resolution
// ============================================================

func TestUser_AuthorityTokens(t *testing.T) {
	user := &User{
		Role: domain.RoleManager,
		Permissions: []Permission{
			{Code: "reports.export"},
		},
	}

	assert.ElementsMatch(t, []string{"ROLE_MANAGER", "reports.export"}, user.AuthorityTokens())
}

func TestUser_AuthorityTokens_RoleOnly(t *testing.T) {
	user := &User{Role: domain.RoleSalesRep}
	assert.Equal(t, []string{"ROLE_SALES_REP"}, user.AuthorityTokens())
}

// ============================================================
// Lead conversion state
// ============================================================

func TestLead_MarkConverted(t *testing.T) {
	lead := &Lead{Status: domain.LeadQualified}

	lead.MarkConverted(11, 42)

	assert.True(t, lead.IsConverted)
	assert.Equal(t, domain.LeadConverted, lead.Status)
	require.NotNil(t, lead.ConvertedCustomerID)
	require.NotNil(t, lead.ConvertedOpportunityID)
	assert.Equal(t, uint(11), *lead.ConvertedCustomerID)
	assert.Equal(t, uint(42), *lead.ConvertedOpportunityID)
	require.NotNil(t, lead.ConvertedAt)
	assert.WithinDuration(t, time.Now(), *lead.ConvertedAt, time.Minute)
}
