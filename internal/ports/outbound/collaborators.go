// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the dialogue core uses to reach external systems
package outbound

import (
	"context"
	"time"

	"github.com/recipetalk/v1/internal/domain/recipe"
)

// CompletionOptions control a single text-completion call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// CompletionClient is the text-completion provider boundary. Implementations
// must support independent concurrent invocations and fail with the
// PROVIDER_UNAVAILABLE / PROVIDER_TIMEOUT error classes from pkg/errors.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	HealthCheck(ctx context.Context) error
}

// SearchFilters narrow a recipe search.
type SearchFilters struct {
	UserID    string
	Allergies []string
	Limit     int
}

// RecipeSearchProvider is the read-only search boundary.
type RecipeSearchProvider interface {
	Search(ctx context.Context, query string, filters SearchFilters) ([]*recipe.Recipe, error)
	SearchByID(ctx context.Context, id string) (*recipe.Recipe, error)
}

// ArtifactStore persists generated alternative recipes. It is the only store
// the dialogue core writes to.
type ArtifactStore interface {
	// FindGeneratedAlternative looks up a previously generated alternative of
	// the given original whose missing-items shape loosely matches.
	FindGeneratedAlternative(ctx context.Context, originalID, missingShape string) (*recipe.Recipe, error)
	// Persist stores a generated recipe together with the missing-items shape
	// it was generated for, which future dedup lookups match against.
	Persist(ctx context.Context, rec *recipe.Recipe, missingShape string) error
	// MaxGeneratedIDSuffix returns the highest numeric suffix among stored
	// recipe ids carrying the prefix, 0 when none exist.
	MaxGeneratedIDSuffix(ctx context.Context, prefix string) (int, error)
}

// CacheRepository defines the interface for byte-value caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
