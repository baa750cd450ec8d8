package dialogue

import (
	"context"
	"errors"
	"sync"

	"github.com/recipetalk/v1/internal/domain/recipe"
	"github.com/recipetalk/v1/internal/ports/outbound"
	apperrors "github.com/recipetalk/v1/pkg/errors"
)

// stubClient is a scriptable completion client. When complete is nil every
// call fails with a provider-unavailable error.
type stubClient struct {
	mu       sync.Mutex
	complete func(prompt string, opts outbound.CompletionOptions) (string, error)
	health   func() error
	calls    int
}

func (c *stubClient) Complete(_ context.Context, prompt string, opts outbound.CompletionOptions) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.complete == nil {
		return "", apperrors.NewProviderUnavailableError("stub", errors.New("down"))
	}
	return c.complete(prompt, opts)
}

func (c *stubClient) HealthCheck(context.Context) error {
	if c.health == nil {
		return nil
	}
	return c.health()
}

func (c *stubClient) completions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// stubSearch returns a fixed result set for every query.
type stubSearch struct {
	recipes []*recipe.Recipe
	err     error
}

func (s *stubSearch) Search(_ context.Context, _ string, filters outbound.SearchFilters) ([]*recipe.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := s.recipes
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

func (s *stubSearch) SearchByID(_ context.Context, id string) (*recipe.Recipe, error) {
	for _, rec := range s.recipes {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, apperrors.NewRecipeNotFoundError(id)
}

// stubStore records persisted recipes and serves scripted dedup hits.
type stubStore struct {
	mu         sync.Mutex
	existing   map[string]*recipe.Recipe // originalID + "|" + shape
	persisted  []*recipe.Recipe
	persistErr error
	findErr    error
	maxSuffix  int
	maxErr     error
}

func (s *stubStore) FindGeneratedAlternative(_ context.Context, originalID, shape string) (*recipe.Recipe, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existing[originalID+"|"+shape], nil
}

func (s *stubStore) Persist(_ context.Context, rec *recipe.Recipe, shape string) error {
	if s.persistErr != nil {
		return s.persistErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existing == nil {
		s.existing = make(map[string]*recipe.Recipe)
	}
	s.existing[rec.OriginalRecipeID+"|"+shape] = rec
	s.persisted = append(s.persisted, rec)
	return nil
}

func (s *stubStore) MaxGeneratedIDSuffix(context.Context, string) (int, error) {
	if s.maxErr != nil {
		return 0, s.maxErr
	}
	return s.maxSuffix, nil
}

func kimchiStew() *recipe.Recipe {
	return &recipe.Recipe{
		ID:          "recipe_001",
		Name:        "김치찌개",
		NameEn:      "Kimchi Stew",
		Description: "얼큰한 김치찌개",
		Ingredients: []string{"김치 300g", "돼지고기 200g", "두부 1/2모"},
		Steps:       []string{"고기를 볶는다", "김치와 물을 넣고 끓인다"},
		Minutes:     30,
		Difficulty:  recipe.DifficultyEasy,
	}
}
