package dialogue

import (
	"fmt"
	"strings"

	"github.com/recipetalk/v1/internal/domain/conversation"
	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/recipetalk/v1/internal/infrastructure/cache"
)

// PromptBuilder assembles the prompts used by the analyzer, classifier and
// generator. Structural skeletons are cached by shape; user content is only
// ever interpolated into the final string, never stored.
type PromptBuilder struct {
	skeletons *cache.PromptCache
}

// NewPromptBuilder creates a prompt builder backed by a skeleton cache.
func NewPromptBuilder(skeletons *cache.PromptCache) *PromptBuilder {
	if skeletons == nil {
		skeletons = cache.NewPromptCache(0, 0)
	}
	return &PromptBuilder{skeletons: skeletons}
}

// ClassificationPrompt builds the rich Stage-1 classification prompt.
func (b *PromptBuilder) ClassificationPrompt(message string, convCtx conversation.Context) string {
	shape := "classify/plain"
	if convCtx.HasContext {
		shape = "classify/context"
	}
	skeleton := b.skeletons.GetOrBuild(shape, func() string {
		s := `You are an intent classifier for a Korean cooking assistant.
Classify the user message into exactly one intent:
- recipe_list: the user wants recipe recommendations or search results
- recipe_detail: the user asks how to cook one specific dish
- alternative_recipe: the user lacks an ingredient or tool and needs a variant of a discussed recipe
- general_chat: greetings, small talk, anything else

Messages are usually Korean. "없으면", "없어", "대신", "빼고" signal a missing item.

CRITICAL: Respond with ONLY a valid JSON object in this exact format:
{
  "intent": "recipe_list",
  "confidence": 0.9,
  "reasoning": "short explanation",
  "needs_alternative": false,
  "missing_items": [],
  "related_recipe": ""
}

Examples:
- "닭가슴살 요리 추천해줘" -> recipe_list
- "김치찌개 어떻게 만들어?" -> recipe_detail
- "오븐이 없으면 어떻게 해?" -> alternative_recipe when a recipe was already discussed
- "고마워!" -> general_chat`
		if shape == "classify/context" {
			return s + `

Conversation context:
%s

User message: %s`
		}
		return s + `

User message: %s`
	})

	if convCtx.HasContext {
		return fmt.Sprintf(skeleton, formatContextBlock(convCtx), message)
	}
	return fmt.Sprintf(skeleton, message)
}

// FallbackClassificationPrompt builds the simplified Stage-2 prompt, used when
// the rich prompt's output failed to parse.
func (b *PromptBuilder) FallbackClassificationPrompt(message string) string {
	skeleton := b.skeletons.GetOrBuild("classify/fallback", func() string {
		return `Classify this message into one of: recipe_list, recipe_detail, alternative_recipe, general_chat.
Respond with ONLY JSON: {"intent": "...", "confidence": 0.0, "reasoning": "..."}

Message: %s`
	})
	return fmt.Sprintf(skeleton, message)
}

// MinimalClassificationPrompt builds the last-resort Stage-3 prompt.
func (b *PromptBuilder) MinimalClassificationPrompt(message string) string {
	skeleton := b.skeletons.GetOrBuild("classify/minimal", func() string {
		return `Intent of "%s"? JSON only: {"intent":"recipe_list|recipe_detail|alternative_recipe|general_chat"}`
	})
	return fmt.Sprintf(skeleton, message)
}

// ContextExtractionPrompt builds the structured-extraction prompt for the
// context analyzer.
func (b *PromptBuilder) ContextExtractionPrompt(turns []conversation.Turn) string {
	skeleton := b.skeletons.GetOrBuild("context/extract", func() string {
		return `Extract conversational context from this recipe-assistant dialogue.
Respond with ONLY a valid JSON object:
{"recipes": ["recipe names mentioned"], "references": ["other entities the user referred to"], "summary": "one-sentence gist in Korean"}

Dialogue:
%s`
	})

	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(turn.Role)
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return fmt.Sprintf(skeleton, sb.String())
}

// AlternativePrompt builds the constrained generation prompt for alternative
// recipes. The contract demands a bare JSON object.
func (b *PromptBuilder) AlternativePrompt(original *recipe.Recipe, missingItems []string) string {
	skeleton := b.skeletons.GetOrBuild("generate/alternative", func() string {
		return `You are an expert Korean chef. The user cannot use: %s.
Create a variant of the recipe below that avoids those items entirely.

Original recipe: %s
Description: %s
Ingredients: %s
Steps: %s
Cooking time: %d minutes

CRITICAL: Respond with ONLY a JSON object. No prose. Start with { and end with }.
{
  "name": "변형 레시피 이름",
  "name_en": "English name",
  "description": "설명",
  "ingredients": ["재료1", "재료2"],
  "steps": ["1단계", "2단계"],
  "minutes": 30
}`
	})
	return fmt.Sprintf(skeleton,
		strings.Join(missingItems, ", "),
		original.DisplayName(),
		original.Description,
		strings.Join(original.Ingredients, ", "),
		strings.Join(original.Steps, " / "),
		original.Minutes,
	)
}

// GeneralChatPrompt builds the conversational reply prompt.
func (b *PromptBuilder) GeneralChatPrompt(message string, convCtx conversation.Context) string {
	shape := "chat/plain"
	if convCtx.HasContext {
		shape = "chat/context"
	}
	skeleton := b.skeletons.GetOrBuild(shape, func() string {
		s := `You are a friendly Korean cooking assistant. Reply warmly and briefly in Korean.
Stay on the topic of food and cooking when possible.`
		if shape == "chat/context" {
			return s + `

Conversation so far: %s

User: %s`
		}
		return s + `

User: %s`
	})

	if convCtx.HasContext {
		return fmt.Sprintf(skeleton, convCtx.Summary, message)
	}
	return fmt.Sprintf(skeleton, message)
}

func formatContextBlock(convCtx conversation.Context) string {
	var parts []string
	if convCtx.Summary != "" {
		parts = append(parts, "Summary: "+convCtx.Summary)
	}
	if len(convCtx.LastRecipes) > 0 {
		parts = append(parts, "Recently discussed recipes: "+strings.Join(convCtx.LastRecipes, ", "))
	}
	if len(convCtx.UserReferences) > 0 {
		parts = append(parts, "User referred to: "+strings.Join(convCtx.UserReferences, ", "))
	}
	return strings.Join(parts, "\n")
}
