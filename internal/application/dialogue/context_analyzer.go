package dialogue

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// historyWindow is the number of trailing turns (3 user/assistant pairs)
// considered when reconstructing context.
const historyWindow = 6

// ContextAnalyzer reconstructs short-term conversational memory from raw
// history. It never fails: every internal error degrades to the zero-value
// context or to pattern-based extraction.
type ContextAnalyzer struct {
	client  outbound.CompletionClient
	prompts *PromptBuilder
	logger  *zap.Logger
}

// NewContextAnalyzer creates a context analyzer.
func NewContextAnalyzer(client outbound.CompletionClient, prompts *PromptBuilder, logger *zap.Logger) *ContextAnalyzer {
	return &ContextAnalyzer{
		client:  client,
		prompts: prompts,
		logger:  logger.Named("context-analyzer"),
	}
}

// contextExtraction is the JSON wire shape requested from the provider.
type contextExtraction struct {
	Recipes    []string `json:"recipes"`
	References []string `json:"references"`
	Summary    string   `json:"summary"`
}

// AnalyzeContext turns conversation history into a structured context.
// An empty history returns immediately with the zero value; no provider call
// is made.
func (a *ContextAnalyzer) AnalyzeContext(ctx context.Context, message string, history []conversation.Turn) conversation.Context {
	if len(history) == 0 {
		return conversation.EmptyContext()
	}

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	prompt := a.prompts.ContextExtractionPrompt(window)
	raw, err := a.client.Complete(ctx, prompt, outbound.CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   300,
	})
	if err != nil {
		a.logger.Warn("Context extraction call failed, falling back to pattern matching",
			zap.Error(err))
		return a.extractByPattern(window)
	}

	var extracted contextExtraction
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &extracted); err != nil {
		a.logger.Warn("Context extraction response unparseable, falling back to pattern matching",
			zap.Error(err))
		return a.extractByPattern(window)
	}

	result := conversation.Context{
		HasContext:     true,
		LastRecipes:    sanitizeList(extracted.Recipes),
		UserReferences: sanitizeList(extracted.References),
		Summary:        strings.TrimSpace(extracted.Summary),
	}

	a.logger.Debug("Context reconstructed",
		zap.Int("recipes", len(result.LastRecipes)),
		zap.Int("references", len(result.UserReferences)))

	return result
}

var (
	quotedTokenPattern = regexp.MustCompile(`["'“”]([^"'“”]{2,40})["'“”]`)
	hangulDishPattern  = regexp.MustCompile(`[가-힣]+(?:찌개|볶음|구이|조림|무침|비빔밥|덮밥|볶음밥|국수|라면|탕|국|전|찜|죽|샐러드|파스타|스테이크)`)
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*\b`)
)

// extractByPattern is the heuristic fallback extractor. It scans recent turns
// for recipe-like quoted, dish-suffixed or capitalized tokens. Best effort,
// possibly empty, never fails.
func (a *ContextAnalyzer) extractByPattern(window []conversation.Turn) conversation.Context {
	result := conversation.Context{
		HasContext:     true,
		LastRecipes:    []string{},
		UserReferences: []string{},
	}

	seen := make(map[string]bool)
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seen[candidate] || len(result.LastRecipes) >= 5 {
			return
		}
		seen[candidate] = true
		result.LastRecipes = append(result.LastRecipes, candidate)
	}

	// Most recent turns first so LastRecipes[0] is the freshest reference.
	for i := len(window) - 1; i >= 0; i-- {
		content := window[i].Content
		for _, match := range quotedTokenPattern.FindAllStringSubmatch(content, -1) {
			add(match[1])
		}
		for _, match := range hangulDishPattern.FindAllString(content, -1) {
			add(match)
		}
		if window[i].Role == conversation.RoleAssistant {
			for _, match := range capitalizedPattern.FindAllString(content, -1) {
				add(match)
			}
		}
	}

	return result
}

func sanitizeList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
