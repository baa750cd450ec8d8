// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
package inbound

import (
	"context"

	"github.com/recipetalk/v1/internal/domain/conversation"
)

// DialogueService is the single entry point of the dialogue core. Handle
// never returns an error: every internal failure degrades to a usable
// response with an explicit low confidence.
type DialogueService interface {
	Handle(ctx context.Context, query conversation.AgentQuery) conversation.AgentResponse
	// Ready reports whether startup readiness was achieved. When false the
	// pipeline serves direct-search responses without classification.
	Ready() bool
}
