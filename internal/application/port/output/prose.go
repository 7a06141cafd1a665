package output

import (
	"context"

	"formpilot/internal/domain/entity"
)

// ProseGeneratorPort produces free-form content for a single open-ended
// field (cover letter, motivation, ...). A per-field failure only skips
// that field, never the whole plan.
type ProseGeneratorPort interface {
	GenerateProse(ctx context.Context, label string, agentCtx *entity.AgentContext) (string, error)
}
