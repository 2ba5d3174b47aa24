package services

import (
	"context"
	"testing"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOppTestService() (*OpportunityService, *fakeOpportunityRepo, *fakeCustomerRepo, *fakeProductRepo) {
	oppRepo := newFakeOpportunityRepo()
	customerRepo := newFakeCustomerRepo()
	productRepo := newFakeProductRepo()
	svc := NewOpportunityService(oppRepo, customerRepo, productRepo, testLogger())
	return svc, oppRepo, customerRepo, productRepo
}

func openOpportunity(oppRepo *fakeOpportunityRepo, stage domain.OpportunityStage) *models.Opportunity {
	opp := &models.Opportunity{
		Name:       "Fleet rollout",
		CustomerID: 1,
		OwnerID:    1,
		Value:      decimal.NewFromInt(120000),
	}
	opp.ApplyStage(stage)
	return oppRepo.add(opp)
}

func TestCreateOpportunity(t *testing.T) {
	svc, _, customerRepo, _ := newOppTestService()

	customer := customerRepo.add(&models.Customer{CompanyName: "Okafor Logistics"})

	opp, err := svc.CreateOpportunity(context.Background(), &CreateOpportunityInput{
		Name:       "Fleet rollout",
		CustomerID: customer.ID,
		Value:      "120000",
		OwnerID:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StageProspecting, opp.Stage)
	assert.Equal(t, domain.OpportunityOpen, opp.Status)
	assert.Equal(t, 10, opp.Probability)
	assert.Equal(t, "12000", opp.WeightedValue().String())
}

func TestCreateOpportunity_UnknownCustomer(t *testing.T) {
	svc, _, _, _ := newOppTestService()

	_, err := svc.CreateOpportunity(context.Background(), &CreateOpportunityInput{
		Name:       "Fleet rollout",
		CustomerID: 404,
		Value:      "120000",
		OwnerID:    1,
	})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCreateOpportunity_NegativeValue(t *testing.T) {
	svc, _, customerRepo, _ := newOppTestService()

	customer := customerRepo.add(&models.Customer{CompanyName: "Okafor Logistics"})

	_, err := svc.CreateOpportunity(context.Background(), &CreateOpportunityInput{
		Name:       "Fleet rollout",
		CustomerID: customer.ID,
		Value:      "-1",
		OwnerID:    1,
	})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestAdvanceStage_WalksThePipeline(t *testing.T) {
	svc, oppRepo, _, _ := newOppTestService()

	opp := openOpportunity(oppRepo, domain.StageProspecting)

	expected := []struct {
		stage       domain.OpportunityStage
		probability int
	}{
		{domain.StageQualification, 20},
		{domain.StageNeedsAnalysis, 40},
		{domain.StageProposal, 60},
		{domain.StageNegotiation, 80},
		{domain.StageClosedWon, 100},
	}

	for _, step := range expected {
		advanced, err := svc.AdvanceStage(context.Background(), opp.ID)
		require.NoError(t, err)
		assert.Equal(t, step.stage, advanced.Stage)
		assert.Equal(t, step.probability, advanced.Probability)
	}

	// The final advance closed the record as won
	final := oppRepo.opps[opp.ID]
	assert.Equal(t, domain.OpportunityWon, final.Status)
	require.NotNil(t, final.ActualCloseDate)

	// Terminal stages cannot advance further
	_, err := svc.AdvanceStage(context.Background(), opp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAdvanceStage_OverwritesManualProbability(t *testing.T) {
	svc, oppRepo, _, _ := newOppTestService()

	opp := openOpportunity(oppRepo, domain.StageProspecting)

	override := 55
	_, err := svc.UpdateOpportunity(context.Background(), opp.ID, &UpdateOpportunityInput{Probability: &override})
	require.NoError(t, err)
	assert.Equal(t, 55, oppRepo.opps[opp.ID].Probability)

	advanced, err := svc.AdvanceStage(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, advanced.Probability)
}

func TestClose_FromAnyOpenStage(t *testing.T) {
	svc, oppRepo, _, _ := newOppTestService()

	t.Run("won", func(t *testing.T) {
		opp := openOpportunity(oppRepo, domain.StageQualification)

		closed, err := svc.Close(context.Background(), opp.ID, true)
		require.NoError(t, err)
		assert.Equal(t, domain.StageClosedWon, closed.Stage)
		assert.Equal(t, domain.OpportunityWon, closed.Status)
		assert.Equal(t, 100, closed.Probability)
		require.NotNil(t, closed.ActualCloseDate)
	})

	t.Run("lost", func(t *testing.T) {
		opp := openOpportunity(oppRepo, domain.StageNegotiation)

		closed, err := svc.Close(context.Background(), opp.ID, false)
		require.NoError(t, err)
		assert.Equal(t, domain.StageClosedLost, closed.Stage)
		assert.Equal(t, domain.OpportunityLost, closed.Status)
		assert.Equal(t, 0, closed.Probability)
		assert.True(t, closed.WeightedValue().IsZero())
	})

	t.Run("already closed", func(t *testing.T) {
		opp := openOpportunity(oppRepo, domain.StageClosedWon)

		_, err := svc.Close(context.Background(), opp.ID, false)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestUpdateOpportunity_ClosedIsImmutable(t *testing.T) {
	svc, oppRepo, _, _ := newOppTestService()

	opp := openOpportunity(oppRepo, domain.StageClosedLost)

	name := "Renamed"
	_, err := svc.UpdateOpportunity(context.Background(), opp.ID, &UpdateOpportunityInput{Name: &name})
	assert.ErrorIs(t, err, ErrOpportunityClosed)
}

func TestUpdateOpportunity_ProbabilityBounds(t *testing.T) {
	svc, oppRepo, _, _ := newOppTestService()

	opp := openOpportunity(oppRepo, domain.StageProposal)

	tooHigh := 101
	_, err := svc.UpdateOpportunity(context.Background(), opp.ID, &UpdateOpportunityInput{Probability: &tooHigh})
	assert.ErrorIs(t, err, ErrInvalidProbability)

	negative := -1
	_, err = svc.UpdateOpportunity(context.Background(), opp.ID, &UpdateOpportunityInput{Probability: &negative})
	assert.ErrorIs(t, err, ErrInvalidProbability)
}

func TestAddLineItem_DefaultsFromCatalog(t *testing.T) {
	svc, oppRepo, _, productRepo := newOppTestService()

	opp := openOpportunity(oppRepo, domain.StageProposal)
	product := productRepo.add(&models.Product{
		Name:        "CRM Standard License",
		ProductCode: "CRM-STD",
		UnitPrice:   decimal.NewFromInt(1200),
		TaxRate:     decimal.NewFromInt(7),
	})

	item, err := svc.AddLineItem(context.Background(), opp.ID, &LineItemInput{
		ProductID: product.ID,
		Quantity:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, "1200", item.UnitPrice.String())
	assert.Equal(t, "7", item.TaxRate.String())
	assert.Equal(t, "12000", item.Subtotal().String())
}

func TestAddLineItem_Rejections(t *testing.T) {
	svc, oppRepo, _, productRepo := newOppTestService()

	product := productRepo.add(&models.Product{
		Name:        "CRM Standard License",
		ProductCode: "CRM-STD",
		UnitPrice:   decimal.NewFromInt(1200),
	})

	t.Run("closed opportunity", func(t *testing.T) {
		closed := openOpportunity(oppRepo, domain.StageClosedWon)

		_, err := svc.AddLineItem(context.Background(), closed.ID, &LineItemInput{ProductID: product.ID, Quantity: 1})
		assert.ErrorIs(t, err, ErrOpportunityClosed)
	})

	t.Run("unknown product", func(t *testing.T) {
		opp := openOpportunity(oppRepo, domain.StageProposal)

		_, err := svc.AddLineItem(context.Background(), opp.ID, &LineItemInput{ProductID: 404, Quantity: 1})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("discount over 100", func(t *testing.T) {
		opp := openOpportunity(oppRepo, domain.StageProposal)

		_, err := svc.AddLineItem(context.Background(), opp.ID, &LineItemInput{
			ProductID:          product.ID,
			Quantity:           1,
			DiscountPercentage: "110",
		})
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
	})
}

func TestUpdateLineItem_OwnershipCheck(t *testing.T) {
	svc, oppRepo, _, productRepo := newOppTestService()

	product := productRepo.add(&models.Product{
		Name:        "CRM Standard License",
		ProductCode: "CRM-STD",
		UnitPrice:   decimal.NewFromInt(1200),
	})

	first := openOpportunity(oppRepo, domain.StageProposal)
	second := openOpportunity(oppRepo, domain.StageProposal)

	item, err := svc.AddLineItem(context.Background(), first.ID, &LineItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// A line item is only reachable through its own opportunity
	_, err = svc.UpdateLineItem(context.Background(), second.ID, item.ID, &LineItemInput{ProductID: product.ID, Quantity: 5})
	assert.ErrorIs(t, err, ErrLineItemNotFound)

	updated, err := svc.UpdateLineItem(context.Background(), first.ID, item.ID, &LineItemInput{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
}

func TestRemoveLineItem(t *testing.T) {
	svc, oppRepo, _, productRepo := newOppTestService()

	product := productRepo.add(&models.Product{
		Name:        "CRM Standard License",
		ProductCode: "CRM-STD",
		UnitPrice:   decimal.NewFromInt(1200),
	})

	opp := openOpportunity(oppRepo, domain.StageProposal)
	item, err := svc.AddLineItem(context.Background(), opp.ID, &LineItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveLineItem(context.Background(), opp.ID, item.ID))
	assert.ErrorIs(t, svc.RemoveLineItem(context.Background(), opp.ID, item.ID), ErrLineItemNotFound)
}
