package dialogue

import (
	"context"
	"testing"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAnalyzer(client *stubClient) *ContextAnalyzer {
	return NewContextAnalyzer(client, NewPromptBuilder(nil), zap.NewNop())
}

func TestAnalyzeContextEmptyHistory(t *testing.T) {
	client := &stubClient{}

	result := newTestAnalyzer(client).AnalyzeContext(context.Background(), "안녕하세요", nil)

	assert.False(t, result.HasContext)
	assert.Empty(t, result.LastRecipes)
	assert.Zero(t, client.completions(), "no provider call for empty history")
}

func TestAnalyzeContextFromProvider(t *testing.T) {
	client := &stubClient{
		complete: func(string, outbound.CompletionOptions) (string, error) {
			return `{"recipes": ["김치찌개", " 된장찌개 "], "references": ["돼지고기"], "summary": "찌개 레시피를 찾는 중"}`, nil
		},
	}
	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "김치찌개 알려줘"},
		{Role: conversation.RoleAssistant, Content: "김치찌개 레시피입니다"},
	}

	result := newTestAnalyzer(client).AnalyzeContext(context.Background(), "돼지고기가 없으면?", history)

	assert.True(t, result.HasContext)
	assert.Equal(t, []string{"김치찌개", "된장찌개"}, result.LastRecipes)
	assert.Equal(t, []string{"돼지고기"}, result.UserReferences)
	assert.Equal(t, "찌개 레시피를 찾는 중", result.Summary)
}

func TestAnalyzeContextPatternFallbackOnProviderFailure(t *testing.T) {
	client := &stubClient{} // provider down

	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "김치찌개 끓이는 법 알려줘"},
		{Role: conversation.RoleAssistant, Content: "'김치찌개' 레시피를 찾았어요"},
	}

	result := newTestAnalyzer(client).AnalyzeContext(context.Background(), "고마워", history)

	assert.True(t, result.HasContext)
	require.NotEmpty(t, result.LastRecipes)
	assert.Contains(t, result.LastRecipes, "김치찌개")
}

func TestAnalyzeContextPatternFallbackOnMalformedOutput(t *testing.T) {
	client := &stubClient{
		complete: func(string, outbound.CompletionOptions) (string, error) {
			return "I could not produce JSON, sorry.", nil
		},
	}
	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "'닭가슴살 샐러드' 만들어줘"},
	}

	result := newTestAnalyzer(client).AnalyzeContext(context.Background(), "응", history)

	assert.True(t, result.HasContext)
	assert.Contains(t, result.LastRecipes, "닭가슴살 샐러드")
}

func TestAnalyzeContextWindowsHistory(t *testing.T) {
	var sawPrompt string
	client := &stubClient{
		complete: func(prompt string, _ outbound.CompletionOptions) (string, error) {
			sawPrompt = prompt
			return `{"recipes": [], "references": [], "summary": ""}`, nil
		},
	}

	history := make([]conversation.Turn, 0, 10)
	for i := 0; i < 10; i++ {
		role := conversation.RoleUser
		if i%2 == 1 {
			role = conversation.RoleAssistant
		}
		history = append(history, conversation.Turn{Role: role, Content: turnContent(i)})
	}

	newTestAnalyzer(client).AnalyzeContext(context.Background(), "다음", history)

	assert.NotContains(t, sawPrompt, turnContent(3), "turns outside the window must be dropped")
	assert.Contains(t, sawPrompt, turnContent(4))
	assert.Contains(t, sawPrompt, turnContent(9))
}

func turnContent(i int) string {
	return map[int]string{
		0: "turn-zero", 1: "turn-one", 2: "turn-two", 3: "turn-three", 4: "turn-four",
		5: "turn-five", 6: "turn-six", 7: "turn-seven", 8: "turn-eight", 9: "turn-nine",
	}[i]
}
