package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orchestratorFixture struct {
	client *stubClient
	search *stubSearch
	store  *stubStore
	orch   *Orchestrator
}

func newOrchestratorFixture(client *stubClient, search *stubSearch) *orchestratorFixture {
	prompts := NewPromptBuilder(nil)
	logger := zap.NewNop()
	store := &stubStore{}

	orch := NewOrchestrator(
		NewContextAnalyzer(client, prompts, logger),
		NewIntentClassifier(client, prompts, nil, logger),
		NewAlternativeRecipeGenerator(client, store, prompts, nil, logger),
		client,
		search,
		prompts,
		nil,
		logger,
		Options{TopN: 3, ReadyAttempts: 1, ReadyInterval: time.Millisecond, QueryTimeout: 5 * time.Second},
	)
	return &orchestratorFixture{client: client, search: search, store: store, orch: orch}
}

// waitUntilReady runs the readiness poll synchronously.
func (f *orchestratorFixture) waitUntilReady(t *testing.T) {
	t.Helper()
	f.orch.WaitReady(context.Background())
	require.True(t, f.orch.Ready())
}

func catalogRecipes() []*recipe.Recipe {
	return []*recipe.Recipe{
		kimchiStew(),
		{ID: "recipe_002", Name: "된장찌개", Ingredients: []string{"된장", "두부"}, Minutes: 25},
		{ID: "recipe_003", Name: "부대찌개", Ingredients: []string{"햄", "김치"}, Minutes: 35},
	}
}

func TestHandleRecipeListEndToEnd(t *testing.T) {
	client := &stubClient{
		complete: func(prompt string, _ outbound.CompletionOptions) (string, error) {
			return `{"intent": "recipe_list", "confidence": 0.9, "reasoning": "wants recommendations"}`, nil
		},
	}
	f := newOrchestratorFixture(client, &stubSearch{recipes: catalogRecipes()})
	f.waitUntilReady(t)

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{Message: "찌개 추천해줘"})

	assert.Len(t, resp.Recipes, 3)
	assert.Contains(t, resp.Message, "3개의 레시피")
	assert.Contains(t, resp.Message, "김치찌개")
	assert.Equal(t, "recipe_list", resp.Metadata.Intent)
	assert.Equal(t, "recipe_list", resp.Metadata.ResponseType)
	assert.InDelta(t, 0.9, resp.Metadata.Confidence, 0.001)
	assert.Contains(t, resp.Metadata.ToolsUsed, "context_analyzer")
	assert.Contains(t, resp.Metadata.ToolsUsed, "intent_classifier")
	assert.Contains(t, resp.Metadata.ToolsUsed, "recipe_search")
	assert.GreaterOrEqual(t, resp.Metadata.ProcessingTimeMs, int64(0))
	assert.NotEmpty(t, resp.Suggestions)
}

func TestHandleSearchFailureDegrades(t *testing.T) {
	client := &stubClient{
		complete: func(string, outbound.CompletionOptions) (string, error) {
			return `{"intent": "recipe_list", "confidence": 0.9}`, nil
		},
	}
	f := newOrchestratorFixture(client, &stubSearch{err: errors.New("index offline")})
	f.waitUntilReady(t)

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{Message: "찌개 추천해줘"})

	assert.Empty(t, resp.Recipes)
	assert.NotEmpty(t, resp.Message, "failure must still produce a friendly message")
	assert.InDelta(t, 0.4, resp.Metadata.Confidence, 0.001)
}

func TestHandleProviderDownNeverErrors(t *testing.T) {
	// Classification falls through all stages; general_chat falls back to the
	// static template. No failure may escape as an error or empty response.
	f := newOrchestratorFixture(&stubClient{}, &stubSearch{recipes: catalogRecipes()})
	f.orch.ready.Store(true)

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{
		Message: "안녕하세요",
		History: []conversation.Turn{{Role: conversation.RoleUser, Content: "hi"}},
	})

	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, "general_chat", resp.Metadata.Intent)
	assert.LessOrEqual(t, resp.Metadata.Confidence, 0.3)
}

func TestHandleRecipeDetailRendersView(t *testing.T) {
	client := &stubClient{
		complete: func(string, outbound.CompletionOptions) (string, error) {
			return `{"intent": "recipe_detail", "confidence": 0.85, "related_recipe": "김치찌개"}`, nil
		},
	}
	f := newOrchestratorFixture(client, &stubSearch{recipes: []*recipe.Recipe{kimchiStew()}})
	f.waitUntilReady(t)

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{Message: "김치찌개 어떻게 만들어?"})

	require.Len(t, resp.Recipes, 1)
	assert.Contains(t, resp.Message, "김치찌개")
	assert.Contains(t, resp.Message, "재료:")
	assert.Contains(t, resp.Message, "조리 순서:")
	assert.Contains(t, resp.Message, "영양 정보(추정)")
	assert.Equal(t, "recipe_detail", resp.Metadata.ResponseType)
}

func TestHandleAlternativeRecipeEndToEnd(t *testing.T) {
	client := &stubClient{
		complete: func(prompt string, opts outbound.CompletionOptions) (string, error) {
			if opts.MaxTokens >= 1200 {
				return generationJSON(), nil
			}
			if opts.MaxTokens == 300 {
				return `{"recipes": ["김치찌개"], "references": [], "summary": "김치찌개 논의 중"}`, nil
			}
			return `{"intent": "alternative_recipe", "confidence": 0.8, "needs_alternative": true,
				"missing_items": ["돼지고기"], "related_recipe": "김치찌개"}`, nil
		},
	}
	f := newOrchestratorFixture(client, &stubSearch{recipes: []*recipe.Recipe{kimchiStew()}})
	f.waitUntilReady(t)

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{
		Message: "돼지고기가 없으면 어떻게 해?",
		History: []conversation.Turn{{Role: conversation.RoleUser, Content: "김치찌개 알려줘"}},
	})

	require.Len(t, resp.Recipes, 1)
	generated := resp.Recipes[0]
	assert.True(t, generated.IsAIGenerated)
	assert.Equal(t, "recipe_001", generated.OriginalRecipeID)
	assert.Equal(t, "alternative_recipe", resp.Metadata.ResponseType)
	assert.Contains(t, resp.Metadata.ToolsUsed, "alternative_generator")
	assert.Contains(t, resp.Message, "돼지고기")
}

func TestHandleAlternativeWithoutOriginalDegradesToList(t *testing.T) {
	client := &stubClient{
		complete: func(prompt string, opts outbound.CompletionOptions) (string, error) {
			if opts.MaxTokens == 300 {
				return `{"recipes": [], "references": [], "summary": ""}`, nil
			}
			return `{"intent": "alternative_recipe", "confidence": 0.8, "needs_alternative": true}`, nil
		},
	}
	f := newOrchestratorFixture(client, &stubSearch{recipes: nil})
	f.waitUntilReady(t)

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{
		Message: "오븐이 없으면?",
		History: []conversation.Turn{{Role: conversation.RoleUser, Content: "뭐든"}},
	})

	assert.Equal(t, "recipe_list", resp.Metadata.ResponseType)
}

func TestHandleDegradedModeUsesDirectSearch(t *testing.T) {
	client := &stubClient{health: func() error { return errors.New("provider down") }}
	f := newOrchestratorFixture(client, &stubSearch{recipes: catalogRecipes()})

	f.orch.WaitReady(context.Background())
	require.False(t, f.orch.Ready())

	resp := f.orch.Handle(context.Background(), conversation.AgentQuery{Message: "김치찌개"})

	assert.Equal(t, "direct_search", resp.Metadata.ResponseType)
	assert.Len(t, resp.Recipes, 3)
	assert.InDelta(t, 0.3, resp.Metadata.Confidence, 0.001)
	assert.Zero(t, f.client.completions(), "degraded mode must not call the provider")
}

type panickingSearch struct{}

func (panickingSearch) Search(context.Context, string, outbound.SearchFilters) ([]*recipe.Recipe, error) {
	panic("index corrupted")
}

func (panickingSearch) SearchByID(context.Context, string) (*recipe.Recipe, error) {
	panic("index corrupted")
}

func TestHandleRecoversFromPanic(t *testing.T) {
	client := &stubClient{
		complete: func(string, outbound.CompletionOptions) (string, error) {
			return `{"intent": "recipe_list", "confidence": 0.9}`, nil
		},
	}
	prompts := NewPromptBuilder(nil)
	logger := zap.NewNop()
	orch := NewOrchestrator(
		NewContextAnalyzer(client, prompts, logger),
		NewIntentClassifier(client, prompts, nil, logger),
		NewAlternativeRecipeGenerator(client, &stubStore{}, prompts, nil, logger),
		client,
		panickingSearch{},
		prompts,
		nil,
		logger,
		DefaultOptions(),
	)
	orch.ready.Store(true)

	resp := orch.Handle(context.Background(), conversation.AgentQuery{Message: "찌개 추천해줘"})

	assert.Equal(t, "error", resp.Metadata.ResponseType)
	assert.InDelta(t, 0.1, resp.Metadata.Confidence, 0.001)
	assert.NotEmpty(t, resp.Message)
}
