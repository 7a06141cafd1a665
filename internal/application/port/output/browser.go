package output

import (
	"context"

	"formpilot/internal/domain/entity"
)

// SnapshotPort captures the current form state of the live page.
// Selectors in the snapshot are assumed valid for its lifetime.
type SnapshotPort interface {
	ExtractSnapshot(ctx context.Context) (*entity.FormSnapshot, error)
}

// ActionExecutorPort applies one approved action to the live page.
// The planner never calls this; execution is the caller's decision.
type ActionExecutorPort interface {
	Apply(ctx context.Context, action entity.AgentAction) error
}
