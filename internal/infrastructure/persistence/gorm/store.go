package gorm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/recipetalk/v1/internal/ports/outbound"
	apperrors "github.com/recipetalk/v1/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds database connection settings.
type Config struct {
	Path string
}

// NewDatabase opens the SQLite database, runs migrations, and seeds the
// recipe catalog when empty.
func NewDatabase(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "recipetalk.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&RecipeModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := seedRecipes(db, logger); err != nil {
		return nil, fmt.Errorf("failed to seed recipes: %w", err)
	}

	logger.Info("Database ready", zap.String("path", path))
	return db, nil
}

// RecipeStore implements recipe search and generated-artifact persistence
// over a single recipes table.
type RecipeStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

var (
	_ outbound.RecipeSearchProvider = (*RecipeStore)(nil)
	_ outbound.ArtifactStore        = (*RecipeStore)(nil)
)

// NewRecipeStore creates the store.
func NewRecipeStore(db *gorm.DB, logger *zap.Logger) *RecipeStore {
	return &RecipeStore{
		db:     db,
		logger: logger.Named("recipe-store"),
	}
}

// Search finds recipes matching the query text, excluding any containing the
// filtered allergens. An empty query returns the most recent recipes.
func (s *RecipeStore) Search(ctx context.Context, query string, filters outbound.SearchFilters) ([]*recipe.Recipe, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}

	tx := s.db.WithContext(ctx).Model(&RecipeModel{})

	query = strings.TrimSpace(query)
	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where(
			"name LIKE ? OR name_en LIKE ? OR description LIKE ? OR ingredients LIKE ? OR tags LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	for _, allergen := range filters.Allergies {
		allergen = strings.TrimSpace(allergen)
		if allergen == "" {
			continue
		}
		pattern := "%" + allergen + "%"
		tx = tx.Where("ingredients NOT LIKE ? AND ingredients_en NOT LIKE ?", pattern, pattern)
	}

	var models []RecipeModel
	if err := tx.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		s.logger.Error("Recipe search failed", zap.String("query", query), zap.Error(err))
		return nil, apperrors.NewPersistenceError("search", err)
	}

	recipes := make([]*recipe.Recipe, 0, len(models))
	for i := range models {
		recipes = append(recipes, models[i].ToDomain())
	}
	return recipes, nil
}

// SearchByID looks a recipe up by exact id, falling back to an exact name
// match so conversational references like "김치찌개" resolve too.
func (s *RecipeStore) SearchByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	var model RecipeModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.db.WithContext(ctx).
			Where("name = ? OR name_en = ?", id, id).
			First(&model).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewRecipeNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("search_by_id", err)
	}
	return model.ToDomain(), nil
}

// FindGeneratedAlternative returns a prior generation for the original whose
// stored shape loosely matches the requested one. Loose means equal, or one
// shape contained in the other; nil with nil error on no match.
func (s *RecipeStore) FindGeneratedAlternative(ctx context.Context, originalID, missingShape string) (*recipe.Recipe, error) {
	var models []RecipeModel
	err := s.db.WithContext(ctx).
		Where("is_ai_generated = ? AND original_recipe_id = ?", true, originalID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewPersistenceError("find_generated_alternative", err)
	}

	for i := range models {
		if shapesMatch(models[i].MissingShape, missingShape) {
			return models[i].ToDomain(), nil
		}
	}
	return nil, nil
}

// Persist stores a generated recipe. Replaying the same id is a no-op.
func (s *RecipeStore) Persist(ctx context.Context, rec *recipe.Recipe, missingShape string) error {
	model := FromDomain(rec, missingShape)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		return apperrors.NewPersistenceError("persist", err)
	}
	return nil
}

// MaxGeneratedIDSuffix scans stored generated ids for the highest numeric
// suffix after the prefix.
func (s *RecipeStore) MaxGeneratedIDSuffix(ctx context.Context, prefix string) (int, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id LIKE ?", prefix+"%").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, apperrors.NewPersistenceError("max_generated_id", err)
	}

	max := 0
	for _, id := range ids {
		suffix, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if suffix > max {
			max = suffix
		}
	}
	return max, nil
}

func shapesMatch(stored, requested string) bool {
	if stored == requested {
		return true
	}
	if stored == "" || requested == "" {
		return false
	}
	return strings.Contains(stored, requested) || strings.Contains(requested, stored)
}
