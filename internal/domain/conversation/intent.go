// Package conversation contains the value objects exchanged between the
// stages of the dialogue pipeline: conversational context, intent analysis,
// and the agent request/response envelope.
package conversation

import "strings"

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentRecipeList        Intent = "recipe_list"
	IntentRecipeDetail      Intent = "recipe_detail"
	IntentAlternativeRecipe Intent = "alternative_recipe"
	IntentGeneralChat       Intent = "general_chat"
)

// intentAliases maps raw classifier output tokens to canonical intents.
// Synonyms and known provider typos live here so adding one never touches
// control flow. Unrecognized tokens normalize to IntentGeneralChat.
var intentAliases = map[string]Intent{
	"recipe_list":        IntentRecipeList,
	"recipe_search":      IntentRecipeList,
	"recipe_recommend":   IntentRecipeList,
	"list":               IntentRecipeList,
	"search":             IntentRecipeList,
	"recipe_detail":      IntentRecipeDetail,
	"recipe_detial":      IntentRecipeDetail, // typo seen in provider output
	"recipe_info":        IntentRecipeDetail,
	"detail":             IntentRecipeDetail,
	"alternative_recipe": IntentAlternativeRecipe,
	"recipe_alternative": IntentAlternativeRecipe,
	"alternative":        IntentAlternativeRecipe,
	"substitute":         IntentAlternativeRecipe,
	"general_chat":       IntentGeneralChat,
	"chat":               IntentGeneralChat,
	"general":            IntentGeneralChat,
}

// NormalizeIntent maps a raw classifier token to a canonical Intent.
func NormalizeIntent(raw string) Intent {
	key := strings.ToLower(strings.TrimSpace(raw))
	if intent, ok := intentAliases[key]; ok {
		return intent
	}
	return IntentGeneralChat
}

// Valid reports whether the intent is one of the four canonical values.
func (i Intent) Valid() bool {
	switch i {
	case IntentRecipeList, IntentRecipeDetail, IntentAlternativeRecipe, IntentGeneralChat:
		return true
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}
