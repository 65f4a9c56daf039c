// Package conversation persists chat history per session.
package conversation

import (
	"context"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant/types"
)

// Store defines conversation persistence. Get returns (nil, nil) when
// no conversation exists for the id.
type Store interface {
	Get(ctx context.Context, id string) (*types.Conversation, error)
	Save(ctx context.Context, conv *types.Conversation) error
	Delete(ctx context.Context, id string) error
}
