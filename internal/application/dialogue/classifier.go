package dialogue

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/infrastructure/monitoring"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// missingItemMarkers are the fixed keywords that signal a missing ingredient
// or tool in Korean and English messages.
var missingItemMarkers = []string{
	"없으면", "없어", "없는데", "대신", "빼고",
	"without", "instead of", "substitute",
}

// intentStage is one strategy in the classification chain. The bool result
// reports whether the stage reached a verdict; false advances the chain.
type intentStage interface {
	name() string
	classify(ctx context.Context, message string, convCtx conversation.Context) (conversation.IntentAnalysis, bool)
}

// IntentClassifier runs an ordered chain of classification strategies. The
// final stage always produces a verdict, so ClassifyIntent never fails.
type IntentClassifier struct {
	stages  []intentStage
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewIntentClassifier wires the standard 3-stage chain: rich LLM prompt,
// simplified LLM prompt, deterministic heuristic.
func NewIntentClassifier(client outbound.CompletionClient, prompts *PromptBuilder, metrics *monitoring.Metrics, logger *zap.Logger) *IntentClassifier {
	namedLogger := logger.Named("intent-classifier")
	return &IntentClassifier{
		stages: []intentStage{
			&primaryLLMStage{client: client, prompts: prompts, logger: namedLogger},
			&fallbackLLMStage{client: client, prompts: prompts, logger: namedLogger},
			&heuristicStage{client: client, prompts: prompts, logger: namedLogger},
		},
		metrics: metrics,
		logger:  namedLogger,
	}
}

// ClassifyIntent returns an IntentAnalysis for the message. The result always
// carries one of the four canonical intents and a confidence in [0, 1].
func (c *IntentClassifier) ClassifyIntent(ctx context.Context, message string, convCtx conversation.Context) conversation.IntentAnalysis {
	for _, stage := range c.stages {
		analysis, ok := stage.classify(ctx, message, convCtx)
		if !ok {
			c.logger.Debug("Classification stage inconclusive, advancing",
				zap.String("stage", stage.name()))
			continue
		}

		if !analysis.Intent.Valid() {
			analysis.Intent = conversation.IntentGeneralChat
		}
		analysis.ClampConfidence()
		c.metrics.RecordClassifierStage(stage.name())

		c.logger.Info("Intent classified",
			zap.String("stage", stage.name()),
			zap.String("intent", analysis.Intent.String()),
			zap.Float64("confidence", analysis.Confidence))

		return analysis
	}

	// Unreachable while the heuristic stage is terminal; kept so the chain
	// contract does not depend on stage ordering.
	c.metrics.RecordClassifierStage("default")
	return exhaustedDefault()
}

// parseIntentResponse parses a provider classification reply. Empty and
// malformed responses are inconclusive.
func parseIntentResponse(raw string) (conversation.IntentAnalysis, bool) {
	cleaned := CleanJSONResponse(raw)
	if cleaned == "" {
		return conversation.IntentAnalysis{}, false
	}

	var wire struct {
		Intent           string   `json:"intent"`
		Confidence       float64  `json:"confidence"`
		Reasoning        string   `json:"reasoning"`
		NeedsAlternative bool     `json:"needs_alternative"`
		MissingItems     []string `json:"missing_items"`
		RelatedRecipe    string   `json:"related_recipe"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return conversation.IntentAnalysis{}, false
	}
	if strings.TrimSpace(wire.Intent) == "" {
		return conversation.IntentAnalysis{}, false
	}

	analysis := conversation.IntentAnalysis{
		Intent:           conversation.NormalizeIntent(wire.Intent),
		Confidence:       wire.Confidence,
		Reasoning:        wire.Reasoning,
		NeedsAlternative: wire.NeedsAlternative,
		MissingItems:     wire.MissingItems,
		RelatedRecipe:    strings.TrimSpace(wire.RelatedRecipe),
	}
	analysis.ClampConfidence()
	return analysis, true
}

// primaryLLMStage sends the rich classification prompt at low temperature.
type primaryLLMStage struct {
	client  outbound.CompletionClient
	prompts *PromptBuilder
	logger  *zap.Logger
}

func (s *primaryLLMStage) name() string { return "primary_llm" }

func (s *primaryLLMStage) classify(ctx context.Context, message string, convCtx conversation.Context) (conversation.IntentAnalysis, bool) {
	prompt := s.prompts.ClassificationPrompt(message, convCtx)
	raw, err := s.client.Complete(ctx, prompt, outbound.CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   400,
	})
	if err != nil {
		s.logger.Warn("Primary classification call failed", zap.Error(err))
		return conversation.IntentAnalysis{}, false
	}
	return parseIntentResponse(raw)
}

// fallbackLLMStage retries with a simplified prompt under the same JSON
// contract.
type fallbackLLMStage struct {
	client  outbound.CompletionClient
	prompts *PromptBuilder
	logger  *zap.Logger
}

func (s *fallbackLLMStage) name() string { return "fallback_llm" }

func (s *fallbackLLMStage) classify(ctx context.Context, message string, _ conversation.Context) (conversation.IntentAnalysis, bool) {
	prompt := s.prompts.FallbackClassificationPrompt(message)
	raw, err := s.client.Complete(ctx, prompt, outbound.CompletionOptions{
		Temperature: 0.1,
		MaxTokens:   200,
	})
	if err != nil {
		s.logger.Warn("Fallback classification call failed", zap.Error(err))
		return conversation.IntentAnalysis{}, false
	}
	return parseIntentResponse(raw)
}

// heuristicStage is deterministic and terminal: it always reaches a verdict.
type heuristicStage struct {
	client  outbound.CompletionClient
	prompts *PromptBuilder
	logger  *zap.Logger
}

func (s *heuristicStage) name() string { return "heuristic" }

func (s *heuristicStage) classify(ctx context.Context, message string, convCtx conversation.Context) (conversation.IntentAnalysis, bool) {
	lower := strings.ToLower(message)
	if convCtx.HasContext && len(convCtx.LastRecipes) > 0 && containsAny(lower, missingItemMarkers) {
		return conversation.IntentAnalysis{
			Intent:           conversation.IntentAlternativeRecipe,
			Confidence:       0.7,
			Reasoning:        "missing-item keyword with a recipe in context",
			NeedsAlternative: true,
			MissingItems:     extractMissingItems(message),
			RelatedRecipe:    convCtx.LastRecipes[0],
		}, true
	}

	// One last minimal provider attempt before the hard default.
	raw, err := s.client.Complete(ctx, s.prompts.MinimalClassificationPrompt(message), outbound.CompletionOptions{
		Temperature: 0,
		MaxTokens:   60,
	})
	if err == nil {
		if analysis, ok := parseIntentResponse(raw); ok {
			if analysis.Confidence == 0 {
				analysis.Confidence = 0.5
			}
			return analysis, true
		}
	} else {
		s.logger.Warn("Minimal classification call failed", zap.Error(err))
	}

	return exhaustedDefault(), true
}

func exhaustedDefault() conversation.IntentAnalysis {
	return conversation.IntentAnalysis{
		Intent:     conversation.IntentGeneralChat,
		Confidence: 0.3,
		Reasoning:  "all classification strategies exhausted",
	}
}

// missingItemPattern captures the word preceding a Korean "missing" marker,
// e.g. "오븐이 없으면" -> "오븐".
var missingItemPattern = regexp.MustCompile(`([가-힣a-zA-Z]+)(?:이|가)?\s*(?:없으면|없어|없는데)`)

func extractMissingItems(message string) []string {
	items := []string{}
	for _, match := range missingItemPattern.FindAllStringSubmatch(message, -1) {
		item := strings.TrimSuffix(strings.TrimSuffix(match[1], "이"), "가")
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
