// Package recipe contains the recipe entity shared across the dialogue core
// and its collaborators.
package recipe

import "strings"

// Difficulty levels used by the search index
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Recipe represents a recipe as stored in the search index. Generated
// alternatives carry a back-reference to the recipe they were derived from.
type Recipe struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	NameEn        string   `json:"name_en,omitempty"`
	Description   string   `json:"description"`
	DescriptionEn string   `json:"description_en,omitempty"`
	Ingredients   []string `json:"ingredients"`
	IngredientsEn []string `json:"ingredients_en,omitempty"`
	Steps         []string `json:"steps"`
	StepsEn       []string `json:"steps_en,omitempty"`
	Minutes       int      `json:"minutes"`
	Difficulty    string   `json:"difficulty"`
	Tags          []string `json:"tags,omitempty"`

	// Fields set only on generated alternatives
	IsAIGenerated    bool   `json:"is_ai_generated,omitempty"`
	OriginalRecipeID string `json:"original_recipe_id,omitempty"`
	GenerationReason string `json:"generation_reason,omitempty"`
}

// DisplayName returns the Korean name, falling back to the English one.
func (r *Recipe) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.NameEn
}

// HasTag reports whether the recipe carries the given tag.
func (r *Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Pipeline stages never mutate each other's
// recipes in place; the generator clones before overriding fields.
func (r *Recipe) Clone() *Recipe {
	cp := *r
	cp.Ingredients = append([]string(nil), r.Ingredients...)
	cp.IngredientsEn = append([]string(nil), r.IngredientsEn...)
	cp.Steps = append([]string(nil), r.Steps...)
	cp.StepsEn = append([]string(nil), r.StepsEn...)
	cp.Tags = append([]string(nil), r.Tags...)
	return &cp
}
