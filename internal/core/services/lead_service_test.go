package services

import (
	"context"
	"testing"

	"salescrm/internal/adapters/persistence/models"
	"salescrm/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeadTestService() (*LeadService, *fakeLeadRepo, *fakeUserRepo) {
	leadRepo := newFakeLeadRepo()
	userRepo := newFakeUserRepo()
	svc := NewLeadService(leadRepo, userRepo, testLogger())
	return svc, leadRepo, userRepo
}

func TestCreateLead_StartsAsNew(t *testing.T) {
	svc, _, _ := newLeadTestService()

	value := "25000.00"
	lead, err := svc.CreateLead(context.Background(), &CreateLeadInput{
		FirstName:      "Maya",
		LastName:       "Okafor",
		CompanyName:    "Okafor Logistics",
		Source:         "REFERRAL",
		EstimatedValue: &value,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.LeadNew, lead.Status)
	assert.False(t, lead.IsConverted)
	require.True(t, lead.EstimatedValue.Valid)
	assert.Equal(t, "25000", lead.EstimatedValue.Decimal.String())
}

func TestCreateLead_BadEstimatedValue(t *testing.T) {
	svc, _, _ := newLeadTestService()

	value := "not-a-number"
	_, err := svc.CreateLead(context.Background(), &CreateLeadInput{
		FirstName:      "Maya",
		LastName:       "Okafor",
		EstimatedValue: &value,
	})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestUpdateLead_ConvertedIsImmutable(t *testing.T) {
	svc, leadRepo, _ := newLeadTestService()

	lead := leadRepo.add(&models.Lead{
		FirstName:   "Jon",
		LastName:    "Berg",
		Status:      domain.LeadConverted,
		IsConverted: true,
	})

	name := "Changed"
	_, err := svc.UpdateLead(context.Background(), lead.ID, &UpdateLeadInput{FirstName: &name})
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)
	assert.Equal(t, "Jon", leadRepo.leads[lead.ID].FirstName)
}

func TestUpdateLead_CannotSetConvertedStatus(t *testing.T) {
	svc, leadRepo, _ := newLeadTestService()

	lead := leadRepo.add(&models.Lead{FirstName: "Jon", LastName: "Berg", Status: domain.LeadQualified})

	status := string(domain.LeadConverted)
	_, err := svc.UpdateLead(context.Background(), lead.ID, &UpdateLeadInput{Status: &status})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestQualifyLead(t *testing.T) {
	svc, leadRepo, _ := newLeadTestService()

	lead := leadRepo.add(&models.Lead{FirstName: "Jon", LastName: "Berg", Status: domain.LeadContacted})

	qualified, err := svc.QualifyLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadQualified, qualified.Status)
}

func TestAssignLead_UnknownUser(t *testing.T) {
	svc, leadRepo, _ := newLeadTestService()

	lead := leadRepo.add(&models.Lead{FirstName: "Jon", LastName: "Berg", Status: domain.LeadNew})

	_, err := svc.AssignLead(context.Background(), lead.ID, 999)
	assert.ErrorIs(t, err, ErrUserNotFoundSvc)
}

func TestConvertLead(t *testing.T) {
	svc, leadRepo, userRepo := newLeadTestService()

	owner := userRepo.add(&models.User{
		FirstName: "Rita",
		LastName:  "Nowak",
		Email:     "rita@example.com",
		Role:      domain.RoleSalesRep,
		Status:    domain.UserActive,
	})

	assigned := owner.ID
	lead := leadRepo.add(&models.Lead{
		FirstName:    "Maya",
		LastName:     "Okafor",
		CompanyName:  "Okafor Logistics",
		Email:        "maya@okafor.example",
		Status:       domain.LeadQualified,
		AssignedToID: &assigned,
	})

	converted, err := svc.ConvertLead(context.Background(), lead.ID, &ConvertLeadInput{
		OpportunityName:  "Okafor fleet rollout",
		OpportunityValue: "120000",
		OwnerID:          owner.ID,
	})
	require.NoError(t, err)

	assert.True(t, converted.IsConverted)
	assert.Equal(t, domain.LeadConverted, converted.Status)
	require.NotNil(t, converted.ConvertedCustomerID)
	require.NotNil(t, converted.ConvertedOpportunityID)
	assert.Equal(t, 1, leadRepo.convertCalls)
}

func TestConvertLead_OnlyOnce(t *testing.T) {
	svc, leadRepo, userRepo := newLeadTestService()

	owner := userRepo.add(&models.User{Email: "rita@example.com", Role: domain.RoleSalesRep, Status: domain.UserActive})
	lead := leadRepo.add(&models.Lead{FirstName: "Maya", LastName: "Okafor", Status: domain.LeadQualified})

	input := &ConvertLeadInput{
		OpportunityName:  "Okafor fleet rollout",
		OpportunityValue: "120000",
		OwnerID:          owner.ID,
	}

	_, err := svc.ConvertLead(context.Background(), lead.ID, input)
	require.NoError(t, err)

	// Second conversion fails before any write happens
	_, err = svc.ConvertLead(context.Background(), lead.ID, input)
	assert.ErrorIs(t, err, domain.ErrAlreadyConverted)
	assert.Equal(t, 1, leadRepo.convertCalls)
}

func TestConvertLead_NegativeValue(t *testing.T) {
	svc, leadRepo, userRepo := newLeadTestService()

	owner := userRepo.add(&models.User{Email: "rita@example.com", Role: domain.RoleSalesRep, Status: domain.UserActive})
	lead := leadRepo.add(&models.Lead{FirstName: "Maya", LastName: "Okafor", Status: domain.LeadQualified})

	_, err := svc.ConvertLead(context.Background(), lead.ID, &ConvertLeadInput{
		OpportunityName:  "Bad deal",
		OpportunityValue: "-5",
		OwnerID:          owner.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.False(t, leadRepo.leads[lead.ID].IsConverted)
	assert.Equal(t, 0, leadRepo.convertCalls)
}

func TestConvertLead_CompanyNameFallsBackToLeadName(t *testing.T) {
	svc, leadRepo, userRepo := newLeadTestService()

	owner := userRepo.add(&models.User{Email: "rita@example.com", Role: domain.RoleSalesRep, Status: domain.UserActive})

	// No company on the lead or the input: the person's name becomes the account
	lead := leadRepo.add(&models.Lead{FirstName: "Maya", LastName: "Okafor", Status: domain.LeadQualified})

	converted, err := svc.ConvertLead(context.Background(), lead.ID, &ConvertLeadInput{
		OpportunityName:  "Direct deal",
		OpportunityValue: "9000",
		OwnerID:          owner.ID,
	})
	require.NoError(t, err)
	assert.True(t, converted.IsConverted)
}
