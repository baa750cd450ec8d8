package conversation

import "github.com/recipetalk/v1/internal/domain/recipe"

// AgentQuery is the single entry-point request for the dialogue pipeline.
type AgentQuery struct {
	Message       string   `json:"message"`
	UserID        string   `json:"user_id,omitempty"`
	SessionID     string   `json:"session_id,omitempty"`
	History       []Turn   `json:"conversation_history,omitempty"`
	UserAllergies []string `json:"user_allergies,omitempty"`
}

// ResponseMetadata accompanies every response, including degraded ones.
// Confidence is always populated; internal failures produce a low default
// rather than an absent value.
type ResponseMetadata struct {
	ProcessingTimeMs int64    `json:"processing_time_ms"`
	ToolsUsed        []string `json:"tools_used"`
	Confidence       float64  `json:"confidence"`
	ResponseType     string   `json:"response_type"`
	Intent           string   `json:"intent"`
}

// AgentResponse is the pipeline's result. The pipeline never fails; the worst
// case is a templated apology with low confidence.
type AgentResponse struct {
	Message     string           `json:"message"`
	Recipes     []*recipe.Recipe `json:"recipes"`
	Suggestions []string         `json:"suggestions"`
	Metadata    ResponseMetadata `json:"metadata"`
}

// AlternativeRecipeRequest is built by the orchestrator when the classified
// intent is alternative_recipe and consumed once by the generator. Only its
// output recipe is ever persisted.
type AlternativeRecipeRequest struct {
	OriginalRecipe *recipe.Recipe
	MissingItems   []string
	UserMessage    string
	UserID         string
}
