package state

// Assessment is the analysis collaborator's reading of a declaration.
type Assessment struct {
	Intent string `json:"intent"`
	Target string `json:"target"`
	Tone   string `json:"tone"`
}

// Synergy classification values.
const (
	SynergyAligned    = "aligned"
	SynergyUndermined = "undermined"
	SynergyNeutral    = "neutral"
)

// Integration describes how the declaration interacts with the turn's event.
type Integration struct {
	Synergy       string `json:"synergy"` // aligned|undermined|neutral
	NarrativeHook string `json:"narrative_hook,omitempty"`
}

// PolicyCheck is the out-of-bounds screen applied upstream.
type PolicyCheck struct {
	OutOfBounds bool     `json:"out_of_bounds"`
	Violations  []string `json:"violations,omitempty"`
}

// EvaluatorOutput is the fixed input contract consumed from the analysis
// collaborator. It validates against a strict schema before reaching the
// core; malformed records are rejected upstream.
type EvaluatorOutput struct {
	Assessment         Assessment  `json:"assessment"`
	Signals            SignalSet   `json:"signals"`
	Event              RngEvent    `json:"event"`
	SeverityNote       string      `json:"severity_note,omitempty"`
	Integration        Integration `json:"integration"`
	IncoherencePenalty float64     `json:"incoherence_penalty"` // [0,1]
	Policy             PolicyCheck `json:"policy"`
	Rationale          string      `json:"rationale,omitempty"`
}

// TurnResult is the turn record emitted for the persistence and
// presentation collaborators. Narrative and Quotes are placeholders filled
// in by a separate, non-numeric collaborator after the core returns.
type TurnResult struct {
	TurnNo        int               `json:"turn_no"`
	StateBefore   CompanyState      `json:"state_before"`
	StateAfter    CompanyState      `json:"state_after"`
	Declaration   string            `json:"declaration"`
	Evaluation    EvaluatorOutput   `json:"evaluation"`
	RawDeltas     Deltas            `json:"raw_deltas"`
	AppliedDeltas Deltas            `json:"applied_deltas"`
	Financials    FinancialSnapshot `json:"financials"`
	Explainers    []string          `json:"explainers,omitempty"`
	Narrative     string            `json:"narrative,omitempty"`
	Quotes        []string          `json:"quotes,omitempty"`
}
