package domain

// StageEffect describes what entering a stage does to an opportunity:
// the probability it forces and, for terminal stages, the final status.
type StageEffect struct {
	Probability int
	Status      OpportunityStatus
	Terminal    bool
}

// stageFlow is the forward path through the pipeline. CLOSED_LOST is not in
// the flow: it is only reachable through an explicit close (see CloseStage).
var stageFlow = map[OpportunityStage]OpportunityStage{
	StageProspecting:   StageQualification,
	StageQualification: StageNeedsAnalysis,
	StageNeedsAnalysis: StageProposal,
	StageProposal:      StageNegotiation,
	StageNegotiation:   StageClosedWon,
}

// stageEffects maps every stage to its forced probability and status effect.
// Non-terminal stages leave the status at OPEN.
var stageEffects = map[OpportunityStage]StageEffect{
	StageProspecting:   {Probability: 10, Status: OpportunityOpen},
	StageQualification: {Probability: 20, Status: OpportunityOpen},
	StageNeedsAnalysis: {Probability: 40, Status: OpportunityOpen},
	StageProposal:      {Probability: 60, Status: OpportunityOpen},
	StageNegotiation:   {Probability: 80, Status: OpportunityOpen},
	StageClosedWon:     {Probability: 100, Status: OpportunityWon, Terminal: true},
	StageClosedLost:    {Probability: 0, Status: OpportunityLost, Terminal: true},
}

// NextStage returns the stage that follows s in the pipeline.
// Returns ErrInvalidTransition when s is terminal or unknown.
func NextStage(s OpportunityStage) (OpportunityStage, error) {
	next, ok := stageFlow[s]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// CloseStage resolves an outcome to its terminal stage.
func CloseStage(won bool) OpportunityStage {
	if won {
		return StageClosedWon
	}
	return StageClosedLost
}

// EffectOf returns the stage effect for s. Unknown stages report as terminal
// with zero probability so a corrupt record can never advance.
func EffectOf(s OpportunityStage) StageEffect {
	effect, ok := stageEffects[s]
	if !ok {
		return StageEffect{Terminal: true}
	}
	return effect
}

// IsTerminal reports whether s is CLOSED_WON or CLOSED_LOST.
func IsTerminal(s OpportunityStage) bool {
	return EffectOf(s).Terminal
}

// PipelineStages lists the stages in pipeline order, terminals last.
// Used by dashboard breakdowns and seeded reports.
func PipelineStages() []OpportunityStage {
	return []OpportunityStage{
		StageProspecting,
		StageQualification,
		StageNeedsAnalysis,
		StageProposal,
		StageNegotiation,
		StageClosedWon,
		StageClosedLost,
	}
}
