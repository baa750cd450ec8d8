package conversation

// IntentAnalysis is the classifier's verdict for one message. It is consumed
// exactly once by the orchestrator's dispatch step.
type IntentAnalysis struct {
	Intent           Intent   `json:"intent"`
	Confidence       float64  `json:"confidence"`
	Reasoning        string   `json:"reasoning"`
	NeedsAlternative bool     `json:"needs_alternative"`
	MissingItems     []string `json:"missing_items"`
	RelatedRecipe    string   `json:"related_recipe,omitempty"`
}

// ClampConfidence forces the confidence into [0, 1]. Provider output is not
// trusted to respect the range.
func (a *IntentAnalysis) ClampConfidence() {
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
}
