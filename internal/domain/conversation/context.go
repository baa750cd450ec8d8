package conversation

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context is the reconstructed short-term conversational memory, recomputed
// per request and owned by the in-flight request alone.
//
// Invariant: when HasContext is false, all other fields are zero.
type Context struct {
	HasContext     bool     `json:"has_context"`
	LastRecipes    []string `json:"last_recipes"`
	UserReferences []string `json:"user_references"`
	Summary        string   `json:"conversation_summary"`
}

// EmptyContext returns the zero-value context used for empty histories and
// for every internal analyzer failure.
func EmptyContext() Context {
	return Context{
		LastRecipes:    []string{},
		UserReferences: []string{},
	}
}
