package dialogue

import "strings"

// Detail-view heuristics: when a stored recipe lacks servings or nutrition
// data, the values shown in a recipe_detail response are estimated from
// ingredient count and keyword matches. These are presentation estimates,
// not nutritional truth.

// NutritionEstimate holds best-effort nutrition figures for a detail view.
type NutritionEstimate struct {
	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

var (
	proteinWords = []string{"닭", "고기", "소고기", "돼지", "계란", "달걀", "두부", "생선", "새우", "chicken", "beef", "pork", "egg", "tofu", "fish", "shrimp"}
	carbWords    = []string{"밥", "쌀", "면", "국수", "빵", "감자", "고구마", "떡", "rice", "noodle", "pasta", "bread", "potato"}
	fatWords     = []string{"기름", "버터", "치즈", "마요네즈", "참기름", "oil", "butter", "cheese", "mayo", "cream"}
)

// EstimateServings estimates a servings label from ingredient count and
// cooking time.
func EstimateServings(ingredientCount, minutes int) string {
	switch {
	case ingredientCount >= 8 || minutes >= 180:
		return "4-6인분"
	case ingredientCount >= 5 || minutes >= 60:
		return "3-4인분"
	default:
		return "2-3인분"
	}
}

// EstimateNutrition estimates per-serving nutrition from the ingredient list.
func EstimateNutrition(ingredients []string) NutritionEstimate {
	est := NutritionEstimate{
		Calories: 120 + len(ingredients)*45,
		ProteinG: float64(len(ingredients)) * 3.0,
		CarbsG:   float64(len(ingredients)) * 10.0,
		FatG:     float64(len(ingredients)) * 2.0,
	}

	for _, ingredient := range ingredients {
		lower := strings.ToLower(ingredient)
		switch {
		case containsAny(lower, proteinWords):
			est.ProteinG += 12
			est.Calories += 80
		case containsAny(lower, carbWords):
			est.CarbsG += 25
			est.Calories += 100
		case containsAny(lower, fatWords):
			est.FatG += 8
			est.Calories += 70
		}
	}

	// Floors keep the estimates plausible for sparse ingredient lists.
	if est.Calories < 150 {
		est.Calories = 150
	}
	if est.ProteinG < 5 {
		est.ProteinG = 5
	}
	if est.CarbsG < 10 {
		est.CarbsG = 10
	}
	if est.FatG < 3 {
		est.FatG = 3
	}

	return est
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
