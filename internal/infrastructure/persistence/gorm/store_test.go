package gorm

import (
	"testing"

	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
)

func TestModelDomainRoundTrip(t *testing.T) {
	rec := &recipe.Recipe{
		ID:               "ai_gen_3",
		Name:             "팬 닭가슴살 구이",
		NameEn:           "Pan-Seared Chicken Breast",
		Description:      "오븐 없이 팬으로 굽는 버전",
		Ingredients:      []string{"닭가슴살 2쪽", "올리브유 2큰술"},
		Steps:            []string{"밑간을 한다", "팬에 굽는다"},
		Minutes:          35,
		Difficulty:       recipe.DifficultyEasy,
		Tags:             []string{"양식", "ai-generated"},
		IsAIGenerated:    true,
		OriginalRecipeID: "recipe_002",
		GenerationReason: "오븐 없이 만들 수 있도록 변형",
	}

	model := FromDomain(rec, "팬")
	assert.Equal(t, "팬", model.MissingShape)

	back := model.ToDomain()
	assert.Equal(t, rec, back)
}

func TestModelDomainRoundTripEmptyLists(t *testing.T) {
	rec := &recipe.Recipe{ID: "recipe_009", Name: "물"}

	back := FromDomain(rec, "").ToDomain()

	assert.Nil(t, back.Ingredients)
	assert.Nil(t, back.Steps)
	assert.Nil(t, back.Tags)
}

func TestShapesMatch(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		requested string
		expected  bool
	}{
		{"exact", "팬", "팬", true},
		{"stored contains requested", "돼지고기,팬", "팬", true},
		{"requested contains stored", "팬", "돼지고기,팬", true},
		{"disjoint", "두부", "팬", false},
		{"both empty", "", "", true},
		{"stored empty", "", "팬", false},
		{"requested empty", "팬", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shapesMatch(tt.stored, tt.requested))
		})
	}
}
