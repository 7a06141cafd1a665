package input

import (
	"context"

	"formpilot/internal/domain/entity"
)

// ActionPlanner turns a form snapshot plus user context into an ordered,
// confidence-scored action plan. It never fails: degraded generative
// capability yields a rule-based plan, not an error.
type ActionPlanner interface {
	BuildActionPlan(ctx context.Context, snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext) *entity.PlanResult
}
