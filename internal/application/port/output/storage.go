package output

import (
	"context"

	"formpilot/internal/domain/entity"
)

// ContextStorePort loads the user's profile and resume material.
type ContextStorePort interface {
	LoadContext(ctx context.Context) (*entity.AgentContext, error)
}
