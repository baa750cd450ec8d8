// Package dialogue implements the conversational pipeline: context analysis,
// intent classification, handler dispatch and alternative recipe generation.
// Nothing in this package propagates an error to the transport; every failure
// degrades to a usable response with an explicit low confidence.
package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/recipetalk/v1/internal/infrastructure/monitoring"
	"github.com/recipetalk/v1/internal/ports/inbound"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// Options tune the orchestrator.
type Options struct {
	TopN          int           // recipes returned by list handlers
	ReadyAttempts int           // readiness poll attempts at startup
	ReadyInterval time.Duration // delay between readiness polls
	QueryTimeout  time.Duration // per-query deadline, 0 disables
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		TopN:          3,
		ReadyAttempts: 10,
		ReadyInterval: time.Second,
		QueryTimeout:  30 * time.Second,
	}
}

// pipelineState carries one in-flight query through the handler chain.
type pipelineState struct {
	query    conversation.AgentQuery
	convCtx  conversation.Context
	analysis conversation.IntentAnalysis
	tools    []string
}

type handlerFunc func(ctx context.Context, state *pipelineState) conversation.AgentResponse

// Orchestrator is the dialogue core's entry point. It sequences context
// analysis, intent classification and the intent handler, and guarantees a
// response for every query.
type Orchestrator struct {
	analyzer   *ContextAnalyzer
	classifier *IntentClassifier
	generator  *AlternativeRecipeGenerator
	client     outbound.CompletionClient
	search     outbound.RecipeSearchProvider
	prompts    *PromptBuilder
	metrics    *monitoring.Metrics
	logger     *zap.Logger
	opts       Options
	ready      atomic.Bool
	handlers   map[conversation.Intent]handlerFunc
}

// NewOrchestrator creates the orchestrator. Call WaitReady before serving.
func NewOrchestrator(
	analyzer *ContextAnalyzer,
	classifier *IntentClassifier,
	generator *AlternativeRecipeGenerator,
	client outbound.CompletionClient,
	search outbound.RecipeSearchProvider,
	prompts *PromptBuilder,
	metrics *monitoring.Metrics,
	logger *zap.Logger,
	opts Options,
) *Orchestrator {
	if opts.TopN <= 0 {
		opts.TopN = DefaultOptions().TopN
	}
	if opts.ReadyAttempts <= 0 {
		opts.ReadyAttempts = DefaultOptions().ReadyAttempts
	}
	if opts.ReadyInterval <= 0 {
		opts.ReadyInterval = DefaultOptions().ReadyInterval
	}

	o := &Orchestrator{
		analyzer:   analyzer,
		classifier: classifier,
		generator:  generator,
		client:     client,
		search:     search,
		prompts:    prompts,
		metrics:    metrics,
		logger:     logger.Named("dialogue-orchestrator"),
		opts:       opts,
	}
	o.handlers = map[conversation.Intent]handlerFunc{
		conversation.IntentRecipeList:        o.handleRecipeList,
		conversation.IntentRecipeDetail:      o.handleRecipeDetail,
		conversation.IntentAlternativeRecipe: o.handleAlternativeRecipe,
		conversation.IntentGeneralChat:       o.handleGeneralChat,
	}
	return o
}

var _ inbound.DialogueService = (*Orchestrator)(nil)

// WaitReady polls the completion provider's readiness with bounded retries.
// When readiness is never achieved the orchestrator stays in degraded mode:
// queries bypass classification and go straight to direct search.
func (o *Orchestrator) WaitReady(ctx context.Context) {
	for attempt := 1; attempt <= o.opts.ReadyAttempts; attempt++ {
		if err := o.client.HealthCheck(ctx); err == nil {
			o.ready.Store(true)
			o.generator.RecoverCounter(ctx)
			o.logger.Info("Completion provider ready", zap.Int("attempt", attempt))
			return
		}

		select {
		case <-ctx.Done():
			o.logger.Warn("Readiness polling cancelled, entering degraded mode")
			return
		case <-time.After(o.opts.ReadyInterval):
		}
	}
	o.logger.Warn("Completion provider never became ready, entering degraded mode",
		zap.Int("attempts", o.opts.ReadyAttempts))
}

// Ready reports whether startup readiness was achieved.
func (o *Orchestrator) Ready() bool {
	return o.ready.Load()
}

// Handle runs the full pipeline for one query. It never returns an error and
// never panics outward: the outer boundary converts any escaping failure into
// a generic apology response.
func (o *Orchestrator) Handle(ctx context.Context, query conversation.AgentQuery) (response conversation.AgentResponse) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Pipeline panic recovered", zap.Any("panic", r))
			response = o.apologyResponse()
		}
		response.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
		o.metrics.RecordQuery(response.Metadata.Intent)
		o.metrics.RecordPipelineDuration(time.Since(start).Seconds())
	}()

	if o.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.QueryTimeout)
		defer cancel()
	}

	if !o.ready.Load() {
		return o.handleDirectSearch(ctx, query)
	}

	state := &pipelineState{query: query}
	state.convCtx = o.analyzer.AnalyzeContext(ctx, query.Message, query.History)
	state.tools = append(state.tools, "context_analyzer")

	state.analysis = o.classifier.ClassifyIntent(ctx, query.Message, state.convCtx)
	state.tools = append(state.tools, "intent_classifier")

	handler, ok := o.handlers[state.analysis.Intent]
	if !ok {
		handler = o.handleGeneralChat
	}

	response = handler(ctx, state)
	response.Metadata.Intent = state.analysis.Intent.String()
	if response.Metadata.Confidence == 0 {
		response.Metadata.Confidence = state.analysis.Confidence
	}
	return response
}

// handleRecipeList searches recipes and composes a templated summary.
func (o *Orchestrator) handleRecipeList(ctx context.Context, state *pipelineState) conversation.AgentResponse {
	state.tools = append(state.tools, "recipe_search")

	recipes, err := o.search.Search(ctx, state.query.Message, outbound.SearchFilters{
		UserID:    state.query.UserID,
		Allergies: state.query.UserAllergies,
		Limit:     o.opts.TopN,
	})
	if err != nil {
		o.logger.Warn("Recipe search failed", zap.Error(err))
		return conversation.AgentResponse{
			Message:     "레시피 검색에 잠시 문제가 생겼어요. 다시 시도해 주세요!",
			Recipes:     []*recipe.Recipe{},
			Suggestions: []string{"다른 재료로 검색해보기"},
			Metadata: conversation.ResponseMetadata{
				ToolsUsed:    state.tools,
				Confidence:   0.4,
				ResponseType: "recipe_list",
			},
		}
	}

	if len(recipes) == 0 {
		return conversation.AgentResponse{
			Message:     fmt.Sprintf("'%s'에 맞는 레시피를 찾지 못했어요. 다른 재료나 요리로 검색해 볼까요?", state.query.Message),
			Recipes:     []*recipe.Recipe{},
			Suggestions: []string{"김치찌개 알려줘", "닭가슴살 요리 추천해줘", "간단한 저녁 메뉴"},
			Metadata: conversation.ResponseMetadata{
				ToolsUsed:    state.tools,
				Confidence:   state.analysis.Confidence,
				ResponseType: "recipe_list",
			},
		}
	}

	names := make([]string, len(recipes))
	for i, rec := range recipes {
		names[i] = rec.DisplayName()
	}

	return conversation.AgentResponse{
		Message: fmt.Sprintf("%d개의 레시피를 찾았어요: %s. 자세한 조리법이 궁금한 요리를 말씀해 주세요!",
			len(recipes), strings.Join(names, ", ")),
		Recipes:     recipes,
		Suggestions: listSuggestions(recipes),
		Metadata: conversation.ResponseMetadata{
			ToolsUsed:    state.tools,
			Confidence:   state.analysis.Confidence,
			ResponseType: "recipe_list",
		},
	}
}

// handleRecipeDetail fetches a single best match and renders a normalized
// detail view with estimated fields where the record is sparse.
func (o *Orchestrator) handleRecipeDetail(ctx context.Context, state *pipelineState) conversation.AgentResponse {
	key := state.analysis.RelatedRecipe
	if key == "" {
		key = state.query.Message
	}
	state.tools = append(state.tools, "recipe_search")

	matches, err := o.search.Search(ctx, key, outbound.SearchFilters{Limit: 1})
	if err != nil || len(matches) == 0 {
		if err != nil {
			o.logger.Warn("Recipe detail lookup failed", zap.String("key", key), zap.Error(err))
		}
		return conversation.AgentResponse{
			Message:     fmt.Sprintf("'%s' 레시피를 찾지 못했어요. 요리 이름을 다시 알려주시겠어요?", key),
			Recipes:     []*recipe.Recipe{},
			Suggestions: []string{"비슷한 요리 추천받기"},
			Metadata: conversation.ResponseMetadata{
				ToolsUsed:    state.tools,
				Confidence:   0.4,
				ResponseType: "recipe_detail",
			},
		}
	}

	match := matches[0]
	return conversation.AgentResponse{
		Message:     o.renderDetailView(match),
		Recipes:     []*recipe.Recipe{match},
		Suggestions: []string{fmt.Sprintf("%s에 어울리는 반찬 추천해줘", match.DisplayName()), "재료가 없으면 어떻게 해?"},
		Metadata: conversation.ResponseMetadata{
			ToolsUsed:    state.tools,
			Confidence:   state.analysis.Confidence,
			ResponseType: "recipe_detail",
		},
	}
}

// defaultSteps fills in when a stored recipe has no instructions.
var defaultSteps = []string{
	"재료를 손질하고 준비합니다.",
	"중불에서 재료를 순서대로 조리합니다.",
	"간을 맞춘 뒤 그릇에 담아 냅니다.",
}

func (o *Orchestrator) renderDetailView(rec *recipe.Recipe) string {
	steps := rec.Steps
	if len(steps) == 0 {
		steps = defaultSteps
	}

	servings := EstimateServings(len(rec.Ingredients), rec.Minutes)
	nutrition := EstimateNutrition(rec.Ingredients)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🍳 %s\n", rec.DisplayName()))
	if rec.Description != "" {
		sb.WriteString(rec.Description + "\n")
	}
	sb.WriteString(fmt.Sprintf("\n⏱ 조리 시간: %d분 · %s 기준\n", rec.Minutes, servings))
	sb.WriteString("\n재료:\n")
	for _, ingredient := range rec.Ingredients {
		sb.WriteString("- " + ingredient + "\n")
	}
	sb.WriteString("\n조리 순서:\n")
	for i, step := range steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}
	sb.WriteString(fmt.Sprintf("\n영양 정보(추정): 약 %dkcal · 단백질 %.0fg · 탄수화물 %.0fg · 지방 %.0fg",
		nutrition.Calories, nutrition.ProteinG, nutrition.CarbsG, nutrition.FatG))
	return sb.String()
}

// handleAlternativeRecipe resolves the original recipe and delegates to the
// generator. An unresolvable original degrades to recipe_list handling.
func (o *Orchestrator) handleAlternativeRecipe(ctx context.Context, state *pipelineState) conversation.AgentResponse {
	original := o.resolveOriginal(ctx, state)
	if original == nil {
		o.logger.Info("No original recipe resolvable for alternative request, degrading to list")
		return o.handleRecipeList(ctx, state)
	}

	state.tools = append(state.tools, "alternative_generator")
	generated := o.generator.GenerateOrFind(ctx, conversation.AlternativeRecipeRequest{
		OriginalRecipe: original,
		MissingItems:   state.analysis.MissingItems,
		UserMessage:    state.query.Message,
		UserID:         state.query.UserID,
	})
	if generated == nil {
		return conversation.AgentResponse{
			Message:     fmt.Sprintf("'%s'의 대체 레시피를 만드는 데 실패했어요. 잠시 후 다시 시도해 주세요.", original.DisplayName()),
			Recipes:     []*recipe.Recipe{original},
			Suggestions: []string{"다른 레시피 추천받기"},
			Metadata: conversation.ResponseMetadata{
				ToolsUsed:    state.tools,
				Confidence:   0.4,
				ResponseType: "alternative_recipe",
			},
		}
	}

	message := fmt.Sprintf("'%s' 대신 만들 수 있는 '%s' 레시피를 준비했어요!", original.DisplayName(), generated.DisplayName())
	if len(state.analysis.MissingItems) > 0 {
		message = fmt.Sprintf("%s 없이도 가능해요. %s", strings.Join(state.analysis.MissingItems, ", "), message)
	}

	return conversation.AgentResponse{
		Message:     message,
		Recipes:     []*recipe.Recipe{generated},
		Suggestions: []string{"조리 순서 자세히 알려줘", "다른 대체 재료도 있어?"},
		Metadata: conversation.ResponseMetadata{
			ToolsUsed:    state.tools,
			Confidence:   state.analysis.Confidence,
			ResponseType: "alternative_recipe",
		},
	}
}

// resolveOriginal finds the recipe an alternative request refers to: the
// classifier's related recipe first, then the freshest context recipe.
func (o *Orchestrator) resolveOriginal(ctx context.Context, state *pipelineState) *recipe.Recipe {
	keys := []string{}
	if state.analysis.RelatedRecipe != "" {
		keys = append(keys, state.analysis.RelatedRecipe)
	}
	if len(state.convCtx.LastRecipes) > 0 {
		keys = append(keys, state.convCtx.LastRecipes[0])
	}

	for _, key := range keys {
		matches, err := o.search.Search(ctx, key, outbound.SearchFilters{Limit: 1})
		if err != nil {
			o.logger.Warn("Original recipe lookup failed", zap.String("key", key), zap.Error(err))
			continue
		}
		if len(matches) > 0 {
			return matches[0]
		}
	}
	return nil
}

// handleGeneralChat composes a conversational reply, falling back to a static
// template when the provider fails.
func (o *Orchestrator) handleGeneralChat(ctx context.Context, state *pipelineState) conversation.AgentResponse {
	state.tools = append(state.tools, "completion_client")

	reply, err := o.client.Complete(ctx, o.prompts.GeneralChatPrompt(state.query.Message, state.convCtx), outbound.CompletionOptions{
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			o.logger.Warn("General chat completion failed, using template", zap.Error(err))
		}
		reply = "안녕하세요! 오늘은 어떤 요리가 궁금하세요? 재료나 요리 이름을 말씀해 주시면 레시피를 찾아드릴게요."
	}

	return conversation.AgentResponse{
		Message:     strings.TrimSpace(reply),
		Recipes:     []*recipe.Recipe{},
		Suggestions: []string{"오늘 저녁 메뉴 추천해줘", "김치찌개 끓이는 법 알려줘"},
		Metadata: conversation.ResponseMetadata{
			ToolsUsed:    state.tools,
			Confidence:   state.analysis.Confidence,
			ResponseType: "general_chat",
		},
	}
}

// handleDirectSearch serves queries while the provider is unready: no
// context analysis, no classification, just a search over the raw message.
func (o *Orchestrator) handleDirectSearch(ctx context.Context, query conversation.AgentQuery) conversation.AgentResponse {
	recipes, err := o.search.Search(ctx, query.Message, outbound.SearchFilters{
		UserID:    query.UserID,
		Allergies: query.UserAllergies,
		Limit:     o.opts.TopN,
	})
	if err != nil {
		o.logger.Warn("Direct search failed", zap.Error(err))
		resp := o.apologyResponse()
		resp.Metadata.ResponseType = "direct_search"
		return resp
	}

	message := "지금은 간단 검색만 가능해요."
	if len(recipes) > 0 {
		names := make([]string, len(recipes))
		for i, rec := range recipes {
			names[i] = rec.DisplayName()
		}
		message = fmt.Sprintf("지금은 간단 검색만 가능해요. 이런 레시피를 찾았어요: %s", strings.Join(names, ", "))
	}

	return conversation.AgentResponse{
		Message:     message,
		Recipes:     recipes,
		Suggestions: []string{},
		Metadata: conversation.ResponseMetadata{
			ToolsUsed:    []string{"recipe_search"},
			Confidence:   0.3,
			ResponseType: "direct_search",
			Intent:       conversation.IntentRecipeList.String(),
		},
	}
}

// apologyResponse is the final safety net: a generic, polite reply with an
// explicit low confidence. Raw error text never reaches the caller.
func (o *Orchestrator) apologyResponse() conversation.AgentResponse {
	return conversation.AgentResponse{
		Message:     "죄송해요, 요청을 처리하는 중에 문제가 생겼어요. 잠시 후 다시 시도해 주세요.",
		Recipes:     []*recipe.Recipe{},
		Suggestions: []string{},
		Metadata: conversation.ResponseMetadata{
			ToolsUsed:    []string{},
			Confidence:   0.1,
			ResponseType: "error",
			Intent:       conversation.IntentGeneralChat.String(),
		},
	}
}

func listSuggestions(recipes []*recipe.Recipe) []string {
	suggestions := make([]string, 0, 3)
	for _, rec := range recipes {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, fmt.Sprintf("%s 자세히 알려줘", rec.DisplayName()))
	}
	return suggestions
}
