package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/recipetalk/v1/internal/infrastructure/monitoring"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// GeneratedIDPrefix prefixes every generated alternative recipe id.
const GeneratedIDPrefix = "ai_gen_"

// missingItemSubstitutions canonicalizes domain-specific equivalents before
// the missing-items shape is computed, so "오븐 없음" and "oven missing"
// dedup against the same prior generation.
var missingItemSubstitutions = map[string]string{
	"오븐":        "팬",
	"oven":      "pan",
	"에어프라이어":    "팬",
	"air fryer": "pan",
	"전자레인지":     "팬",
	"microwave": "pan",
}

// AlternativeRecipeGenerator produces alternative recipes for missing
// ingredients or tools. Generation is dedup-first and at-most-once per
// (original id, missing-items shape) on a best-effort basis. GenerateOrFind
// never fails; the worst case is a nil result.
type AlternativeRecipeGenerator struct {
	client  outbound.CompletionClient
	store   outbound.ArtifactStore
	prompts *PromptBuilder
	metrics *monitoring.Metrics
	logger  *zap.Logger
	counter atomic.Int64
}

// NewAlternativeRecipeGenerator creates a generator. Call RecoverCounter
// before serving queries so generated ids resume after the highest persisted
// suffix.
func NewAlternativeRecipeGenerator(
	client outbound.CompletionClient,
	store outbound.ArtifactStore,
	prompts *PromptBuilder,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
) *AlternativeRecipeGenerator {
	return &AlternativeRecipeGenerator{
		client:  client,
		store:   store,
		prompts: prompts,
		metrics: metrics,
		logger:  logger.Named("alternative-generator"),
	}
}

// RecoverCounter resumes the id counter from the store. When the recovery
// query fails the counter resets to zero, which restarts ids at 1; safe only
// for single-instance deployments.
func (g *AlternativeRecipeGenerator) RecoverCounter(ctx context.Context) {
	maxSuffix, err := g.store.MaxGeneratedIDSuffix(ctx, GeneratedIDPrefix)
	if err != nil {
		g.logger.Warn("Generated-id counter recovery failed, restarting from 1", zap.Error(err))
		g.counter.Store(0)
		return
	}
	g.counter.Store(int64(maxSuffix))
	g.logger.Info("Generated-id counter recovered", zap.Int("max_suffix", maxSuffix))
}

// GenerateOrFind returns an existing alternative for the request when the
// store has one, otherwise generates, persists best-effort, and returns the
// new recipe. Returns nil only when generation itself fails.
func (g *AlternativeRecipeGenerator) GenerateOrFind(ctx context.Context, req conversation.AlternativeRecipeRequest) *recipe.Recipe {
	if req.OriginalRecipe == nil {
		return nil
	}

	shape := MissingItemsShape(req.MissingItems)

	existing, err := g.store.FindGeneratedAlternative(ctx, req.OriginalRecipe.ID, shape)
	if err != nil {
		g.logger.Warn("Alternative dedup lookup failed, generating fresh",
			zap.String("original_id", req.OriginalRecipe.ID),
			zap.Error(err))
	} else if existing != nil {
		g.metrics.RecordDedupHit()
		g.logger.Info("Alternative recipe served from store",
			zap.String("recipe_id", existing.ID),
			zap.String("original_id", req.OriginalRecipe.ID))
		return existing
	}

	generated := g.generate(ctx, req)
	if generated == nil {
		return nil
	}
	g.metrics.RecordGeneration()

	// Persistence is a best-effort side effect: the caller still gets the
	// in-memory recipe when the store write fails.
	if err := g.store.Persist(ctx, generated, shape); err != nil {
		g.logger.Error("Failed to persist generated recipe, returning it unpersisted",
			zap.String("recipe_id", generated.ID),
			zap.Error(err))
	}

	return generated
}

// generatedRecipe is the JSON wire shape demanded from the provider.
type generatedRecipe struct {
	Name        string   `json:"name"`
	NameEn      string   `json:"name_en"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Minutes     int      `json:"minutes"`
}

func (g *AlternativeRecipeGenerator) generate(ctx context.Context, req conversation.AlternativeRecipeRequest) *recipe.Recipe {
	prompt := g.prompts.AlternativePrompt(req.OriginalRecipe, req.MissingItems)
	raw, err := g.client.Complete(ctx, prompt, outbound.CompletionOptions{
		Temperature: 0.3,
		MaxTokens:   1200,
	})
	if err != nil {
		g.logger.Warn("Alternative generation call failed",
			zap.String("original_id", req.OriginalRecipe.ID),
			zap.Error(err))
		return nil
	}

	var parsed generatedRecipe
	if err := json.Unmarshal([]byte(CleanJSONResponse(raw)), &parsed); err != nil {
		g.logger.Warn("Alternative generation response unparseable",
			zap.String("original_id", req.OriginalRecipe.ID),
			zap.Error(err))
		return nil
	}

	original := req.OriginalRecipe
	result := original.Clone()
	result.ID = fmt.Sprintf("%s%d", GeneratedIDPrefix, g.counter.Add(1))
	result.IsAIGenerated = true
	result.OriginalRecipeID = original.ID
	result.GenerationReason = fmt.Sprintf("%s 없이 만들 수 있도록 '%s'에서 변형된 레시피",
		strings.Join(req.MissingItems, ", "), original.DisplayName())
	if !result.HasTag("ai-generated") {
		result.Tags = append(result.Tags, "ai-generated")
	}

	// Provider output overrides the inherited fields only when present.
	if parsed.Name != "" {
		result.Name = parsed.Name
	}
	if parsed.NameEn != "" {
		result.NameEn = parsed.NameEn
	}
	if parsed.Description != "" {
		result.Description = parsed.Description
	}
	if len(parsed.Ingredients) > 0 {
		result.Ingredients = parsed.Ingredients
	}
	if len(parsed.Steps) > 0 {
		result.Steps = parsed.Steps
	}
	if parsed.Minutes > 0 {
		result.Minutes = parsed.Minutes
	}

	g.logger.Info("Alternative recipe generated",
		zap.String("recipe_id", result.ID),
		zap.String("original_id", original.ID),
		zap.Strings("missing_items", req.MissingItems))

	return result
}

// MissingItemsShape canonicalizes a missing-items list into the dedup key
// component: substituted, lowercased, sorted, comma-joined. This is a loose
// heuristic key, not a guaranteed-unique one.
func MissingItemsShape(items []string) string {
	canonical := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if sub, ok := missingItemSubstitutions[item]; ok {
			item = sub
		}
		canonical = append(canonical, item)
	}
	sort.Strings(canonical)
	return strings.Join(canonical, ",")
}
