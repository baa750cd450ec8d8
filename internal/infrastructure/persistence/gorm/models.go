// Package gorm provides the SQLite-backed recipe store.
package gorm

import (
	"strings"
	"time"

	"github.com/recipetalk/v1/internal/domain/recipe"
)

const listSeparator = "\x1f"

// RecipeModel is the database row for a recipe. List-valued fields are stored
// as unit-separator joined strings so LIKE queries stay simple.
type RecipeModel struct {
	ID            string `gorm:"primaryKey;size:64"`
	Name          string `gorm:"size:255;not null;index"`
	NameEn        string `gorm:"size:255;index"`
	Description   string `gorm:"type:text"`
	DescriptionEn string `gorm:"type:text"`
	Ingredients   string `gorm:"type:text"`
	IngredientsEn string `gorm:"type:text"`
	Steps         string `gorm:"type:text"`
	StepsEn       string `gorm:"type:text"`
	Minutes       int
	Difficulty    string `gorm:"size:16"`
	Tags          string `gorm:"type:text"`

	IsAIGenerated    bool   `gorm:"index"`
	OriginalRecipeID string `gorm:"size:64;index"`
	GenerationReason string `gorm:"type:text"`
	MissingShape     string `gorm:"size:255;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (RecipeModel) TableName() string {
	return "recipes"
}

// ToDomain converts the row to the domain entity.
func (m *RecipeModel) ToDomain() *recipe.Recipe {
	return &recipe.Recipe{
		ID:               m.ID,
		Name:             m.Name,
		NameEn:           m.NameEn,
		Description:      m.Description,
		DescriptionEn:    m.DescriptionEn,
		Ingredients:      splitList(m.Ingredients),
		IngredientsEn:    splitList(m.IngredientsEn),
		Steps:            splitList(m.Steps),
		StepsEn:          splitList(m.StepsEn),
		Minutes:          m.Minutes,
		Difficulty:       m.Difficulty,
		Tags:             splitList(m.Tags),
		IsAIGenerated:    m.IsAIGenerated,
		OriginalRecipeID: m.OriginalRecipeID,
		GenerationReason: m.GenerationReason,
	}
}

// FromDomain converts a domain entity to a row. The missing-items shape is
// supplied separately because it is a persistence concern, not a recipe field.
func FromDomain(rec *recipe.Recipe, missingShape string) *RecipeModel {
	return &RecipeModel{
		ID:               rec.ID,
		Name:             rec.Name,
		NameEn:           rec.NameEn,
		Description:      rec.Description,
		DescriptionEn:    rec.DescriptionEn,
		Ingredients:      joinList(rec.Ingredients),
		IngredientsEn:    joinList(rec.IngredientsEn),
		Steps:            joinList(rec.Steps),
		StepsEn:          joinList(rec.StepsEn),
		Minutes:          rec.Minutes,
		Difficulty:       rec.Difficulty,
		Tags:             joinList(rec.Tags),
		IsAIGenerated:    rec.IsAIGenerated,
		OriginalRecipeID: rec.OriginalRecipeID,
		GenerationReason: rec.GenerationReason,
		MissingShape:     missingShape,
	}
}

func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
