package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStage_ForwardPath(t *testing.T) {
	tests := []struct {
		from OpportunityStage
		to   OpportunityStage
	}{
		{StageProspecting, StageQualification},
		{StageQualification, StageNeedsAnalysis},
		{StageNeedsAnalysis, StageProposal},
		{StageProposal, StageNegotiation},
		{StageNegotiation, StageClosedWon},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			next, err := NextStage(tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.to, next)
		})
	}
}

func TestNextStage_TerminalStagesFail(t *testing.T) {
	for _, stage := range []OpportunityStage{StageClosedWon, StageClosedLost} {
		t.Run(string(stage), func(t *testing.T) {
			_, err := NextStage(stage)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestNextStage_UnknownStageFails(t *testing.T) {
	_, err := NextStage(OpportunityStage("BOGUS"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEffectOf_ProbabilityTable(t *testing.T) {
	tests := []struct {
		stage       OpportunityStage
		probability int
		status      OpportunityStatus
		terminal    bool
	}{
		{StageProspecting, 10, OpportunityOpen, false},
		{StageQualification, 20, OpportunityOpen, false},
		{StageNeedsAnalysis, 40, OpportunityOpen, false},
		{StageProposal, 60, OpportunityOpen, false},
		{StageNegotiation, 80, OpportunityOpen, false},
		{StageClosedWon, 100, OpportunityWon, true},
		{StageClosedLost, 0, OpportunityLost, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			effect := EffectOf(tt.stage)
			assert.Equal(t, tt.probability, effect.Probability)
			assert.Equal(t, tt.status, effect.Status)
			assert.Equal(t, tt.terminal, effect.Terminal)
		})
	}
}

func TestCloseStage(t *testing.T) {
	assert.Equal(t, StageClosedWon, CloseStage(true))
	assert.Equal(t, StageClosedLost, CloseStage(false))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StageProspecting))
	assert.False(t, IsTerminal(StageNegotiation))
	assert.True(t, IsTerminal(StageClosedWon))
	assert.True(t, IsTerminal(StageClosedLost))
	// unknown stages must not be advanceable
	assert.True(t, IsTerminal(OpportunityStage("BOGUS")))
}

func TestPipelineStages_CoversEveryStageOnce(t *testing.T) {
	stages := PipelineStages()
	require.Len(t, stages, 7)

	seen := map[OpportunityStage]bool{}
	for _, s := range stages {
		assert.False(t, seen[s], "stage %s listed twice", s)
		seen[s] = true
	}
}
