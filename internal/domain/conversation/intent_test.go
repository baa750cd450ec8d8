package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		raw      string
		expected Intent
	}{
		{"recipe_list", IntentRecipeList},
		{"recipe_search", IntentRecipeList},
		{"RECIPE_LIST", IntentRecipeList},
		{"  recipe_detail  ", IntentRecipeDetail},
		{"recipe_detial", IntentRecipeDetail}, // known provider typo
		{"alternative", IntentAlternativeRecipe},
		{"substitute", IntentAlternativeRecipe},
		{"chat", IntentGeneralChat},
		{"", IntentGeneralChat},
		{"something_else", IntentGeneralChat},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIntent(tt.raw))
		})
	}
}

func TestIntentValid(t *testing.T) {
	assert.True(t, IntentRecipeList.Valid())
	assert.True(t, IntentRecipeDetail.Valid())
	assert.True(t, IntentAlternativeRecipe.Valid())
	assert.True(t, IntentGeneralChat.Valid())
	assert.False(t, Intent("recipe_detial").Valid())
	assert.False(t, Intent("").Valid())
}
