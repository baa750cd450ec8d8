package gorm

import (
	"github.com/recipetalk/v1/internal/domain/recipe"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// seedRecipes loads the starter catalog on first boot. An already-populated
// table is left untouched.
func seedRecipes(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&RecipeModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, rec := range seedCatalog {
		if err := db.Create(FromDomain(rec, "")).Error; err != nil {
			return err
		}
	}

	logger.Info("Seeded recipe catalog", zap.Int("recipes", len(seedCatalog)))
	return nil
}

var seedCatalog = []*recipe.Recipe{
	{
		ID:          "recipe_001",
		Name:        "김치찌개",
		NameEn:      "Kimchi Stew",
		Description: "잘 익은 김치와 돼지고기로 끓이는 얼큰한 찌개",
		Ingredients: []string{"김치 300g", "돼지고기 200g", "두부 1/2모", "대파 1대", "고춧가루 1큰술", "마늘 1큰술"},
		Steps: []string{
			"돼지고기를 먹기 좋게 썰어 냄비에 볶는다",
			"김치를 넣고 함께 볶다가 물을 붓는다",
			"고춧가루와 마늘을 넣고 15분간 끓인다",
			"두부와 대파를 넣고 5분 더 끓인다",
		},
		Minutes:    30,
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"한식", "찌개", "매운맛"},
	},
	{
		ID:          "recipe_002",
		Name:        "닭가슴살 오븐구이",
		NameEn:      "Oven-Baked Chicken Breast",
		Description: "오븐에 구워 담백한 닭가슴살 요리",
		Ingredients: []string{"닭가슴살 2쪽", "올리브유 2큰술", "로즈마리 약간", "소금", "후추", "마늘 3쪽"},
		Steps: []string{
			"닭가슴살에 소금과 후추로 밑간을 한다",
			"올리브유와 로즈마리, 다진 마늘을 발라 20분 재운다",
			"오븐을 200도로 예열한다",
			"25분간 굽는다",
		},
		Minutes:    50,
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"양식", "오븐", "다이어트", "고단백"},
	},
	{
		ID:          "recipe_003",
		Name:        "닭가슴살 샐러드",
		NameEn:      "Chicken Breast Salad",
		Description: "삶은 닭가슴살과 신선한 채소를 곁들인 샐러드",
		Ingredients: []string{"닭가슴살 1쪽", "양상추 100g", "방울토마토 8개", "오이 1/2개", "발사믹 드레싱 3큰술"},
		Steps: []string{
			"닭가슴살을 삶아 결대로 찢는다",
			"채소를 씻어 먹기 좋게 썬다",
			"그릇에 담고 드레싱을 뿌린다",
		},
		Minutes:    20,
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"샐러드", "다이어트", "고단백"},
	},
	{
		ID:          "recipe_004",
		Name:        "된장찌개",
		NameEn:      "Soybean Paste Stew",
		Description: "구수한 된장과 제철 채소로 끓이는 기본 찌개",
		Ingredients: []string{"된장 2큰술", "두부 1/2모", "애호박 1/3개", "감자 1개", "양파 1/2개", "멸치육수 500ml"},
		Steps: []string{
			"멸치육수에 된장을 풀어 끓인다",
			"감자와 양파를 넣고 10분간 끓인다",
			"애호박과 두부를 넣고 5분 더 끓인다",
		},
		Minutes:    25,
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"한식", "찌개"},
	},
	{
		ID:          "recipe_005",
		Name:        "소고기 불고기",
		NameEn:      "Beef Bulgogi",
		Description: "달콤짭짤한 양념에 재운 소고기 볶음",
		Ingredients: []string{"소고기 불고기용 400g", "간장 4큰술", "설탕 2큰술", "배즙 3큰술", "양파 1개", "대파 1대", "참기름 1큰술"},
		Steps: []string{
			"간장, 설탕, 배즙, 참기름으로 양념장을 만든다",
			"소고기를 양념에 30분 재운다",
			"팬에 양파와 함께 센 불에서 볶는다",
			"대파를 넣고 마무리한다",
		},
		Minutes:    45,
		Difficulty: recipe.DifficultyMedium,
		Tags:       []string{"한식", "볶음", "고기"},
	},
	{
		ID:          "recipe_006",
		Name:        "크림 파스타",
		NameEn:      "Cream Pasta",
		Description: "생크림과 베이컨으로 만드는 부드러운 파스타",
		Ingredients: []string{"스파게티면 200g", "생크림 200ml", "베이컨 4줄", "양파 1/2개", "마늘 2쪽", "파마산 치즈 약간", "우유 100ml"},
		Steps: []string{
			"면을 포장지 표시대로 삶는다",
			"팬에 베이컨과 마늘, 양파를 볶는다",
			"생크림과 우유를 붓고 끓인다",
			"삶은 면을 넣고 소스와 버무린 뒤 치즈를 뿌린다",
		},
		Minutes:    30,
		Difficulty: recipe.DifficultyMedium,
		Tags:       []string{"양식", "파스타", "유제품"},
	},
	{
		ID:          "recipe_007",
		Name:        "계란말이",
		NameEn:      "Rolled Omelette",
		Description: "폭신하게 말아내는 기본 반찬",
		Ingredients: []string{"계란 4개", "당근 1/4개", "대파 1/2대", "소금 약간", "식용유"},
		Steps: []string{
			"계란을 풀고 잘게 썬 당근과 대파를 섞는다",
			"약불에서 계란물을 부어가며 말아준다",
			"한 김 식힌 뒤 썰어 낸다",
		},
		Minutes:    15,
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"한식", "반찬", "계란"},
	},
	{
		ID:          "recipe_008",
		Name:        "새우 볶음밥",
		NameEn:      "Shrimp Fried Rice",
		Description: "탱글한 새우를 넣어 고슬고슬 볶은 밥",
		Ingredients: []string{"밥 2공기", "새우 150g", "계란 2개", "대파 1대", "간장 1큰술", "굴소스 1/2큰술", "식용유"},
		Steps: []string{
			"팬에 대파를 볶아 파기름을 낸다",
			"새우를 넣고 익힌 뒤 계란을 스크램블한다",
			"밥을 넣고 간장과 굴소스로 간해 볶는다",
		},
		Minutes:    20,
		Difficulty: recipe.DifficultyEasy,
		Tags:       []string{"볶음밥", "해산물"},
	},
}
