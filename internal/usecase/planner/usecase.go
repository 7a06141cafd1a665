package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"formpilot/internal/application/port/input"
	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
	"formpilot/internal/infrastructure/prompts"
)

var _ input.ActionPlanner = (*UseCase)(nil)

// UseCase is the planning orchestrator: it merges rule-based,
// pre-resolved, generated, and generative-refined actions keyed by
// selector, and runs the two-attempt retry policy with a deterministic
// fallback. It always returns a PlanResult.
type UseCase struct {
	rules     *RuleBasedPlanner
	proseFill *ProseFiller
	builder   *PromptBuilder
	parser    *ResponseParser
	options   *OptionResolver
	llm       output.GenerativePort
	logger    output.LoggerPort
}

func New(llm output.GenerativePort, proseGen output.ProseGeneratorPort, logger output.LoggerPort, rng *rand.Rand) *UseCase {
	options := NewOptionResolver()
	return &UseCase{
		rules:     NewRuleBasedPlanner(NewFieldValueResolver(), options, rng),
		proseFill: NewProseFiller(proseGen, logger),
		builder:   NewPromptBuilder(),
		parser:    NewResponseParser(),
		options:   options,
		llm:       llm,
		logger:    logger,
	}
}

// BuildActionPlan plans fill actions for snapshot given agentCtx. The
// generative backend being cold, flaky, or permanently unavailable only
// degrades the plan, never fails it.
func (uc *UseCase) BuildActionPlan(ctx context.Context, snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext) *entity.PlanResult {
	agentCtx = withSnapshotJob(agentCtx, snapshot)
	allowed := snapshot.KnownSelectors()
	plan := newActionMap()
	var reasons []string

	for _, action := range uc.rules.FieldActions(snapshot, agentCtx) {
		plan.Merge(action)
	}
	for _, action := range uc.rules.PreResolveSelects(snapshot, agentCtx) {
		plan.Merge(action)
	}
	deterministic := plan.Len()

	proseActions := uc.proseFill.Fill(ctx, snapshot, agentCtx)
	for _, action := range proseActions {
		plan.Merge(action)
	}

	unfilled := 0
	for _, field := range snapshot.Fields {
		if !field.HasMeaningfulValue() {
			unfilled++
		}
	}

	uc.logger.Info("Baseline plan built",
		"ruleActions", deterministic,
		"proseActions", len(proseActions),
		"unfilledFields", unfilled,
	)

	if uc.llm == nil {
		reasons = append(reasons, "no generative backend configured")
		return uc.finalize(plan, snapshot, len(proseActions), reasons)
	}

	// Attempt 1: detailed hybrid prompt.
	system, user := uc.builder.BuildHybrid(snapshot, agentCtx, plan.Snapshot())
	raw, err := uc.llm.RunPrompt(ctx, system, user, prompts.ActionsSchema)
	switch {
	case err != nil && errors.Is(err, output.ErrEngineUnavailable):
		// No repair potential here; a second call would fail the same way.
		uc.logger.Warn("Generative engine unavailable, skipping retry", "error", err)
		reasons = append(reasons, fmt.Sprintf("generative engine unavailable (%v); retry skipped", err))
		return uc.finalize(plan, snapshot, len(proseActions), reasons)

	case err != nil:
		reasons = append(reasons, fmt.Sprintf("attempt 1 failed: %v", err))

	default:
		if refined := uc.parser.Parse(raw); len(refined) > 0 {
			applied := uc.mergeRefined(plan, refined, snapshot, allowed)
			detail := fmt.Sprintf("generative refinement applied to %d of %d unfilled fields", applied, unfilled)
			return uc.refinedResult(plan, snapshot, deterministic, len(proseActions), detail)
		}
		reasons = append(reasons, "attempt 1 returned an unparseable response")
	}

	// Attempt 2: simplified prompt over the still-unfilled fields.
	system, user = uc.builder.BuildRetry(snapshot, agentCtx, plan.Snapshot())
	raw, err = uc.llm.RunPrompt(ctx, system, user, prompts.ActionsSchema)
	if err != nil {
		reasons = append(reasons, fmt.Sprintf("attempt 2 failed: %v", err))
	} else if refined := uc.parser.Parse(raw); len(refined) > 0 {
		applied := uc.mergeRefined(plan, refined, snapshot, allowed)
		detail := fmt.Sprintf("retry applied %d actions after: %s", applied, strings.Join(reasons, "; "))
		return uc.refinedResult(plan, snapshot, deterministic, len(proseActions), detail)
	} else {
		reasons = append(reasons, "attempt 2 returned an unparseable response")
	}

	return uc.finalize(plan, snapshot, len(proseActions), reasons)
}

// mergeRefined filters the model's actions through the snapshot's
// selector set, re-validates select values against the live option
// list, and merges by selector. Model clickNext actions are dropped:
// the single navigation action is always appended by the planner.
func (uc *UseCase) mergeRefined(plan *actionMap, refined []entity.AgentAction, snapshot *entity.FormSnapshot, allowed map[string]struct{}) int {
	applied := 0
	for _, action := range refined {
		if action.Type == entity.ActionClickNext {
			continue
		}
		if _, ok := allowed[action.Selector]; !ok {
			uc.logger.Warn("Dropping action for selector outside snapshot", "selector", action.Selector)
			continue
		}
		if action.Type == entity.ActionSetSelect {
			field, ok := snapshot.FieldBySelector(action.Selector)
			if !ok {
				continue
			}
			matched := uc.options.Resolve(field, action.Value)
			if matched == "" {
				uc.logger.Warn("Dropping select action with no matching option",
					"selector", action.Selector, "value", action.Value)
				continue
			}
			action.Value = matched
		}
		plan.Merge(action)
		applied++
	}
	return applied
}

func (uc *UseCase) refinedResult(plan *actionMap, snapshot *entity.FormSnapshot, deterministic, proseCount int, detail string) *entity.PlanResult {
	source := entity.SourceHybrid
	if deterministic == 0 && proseCount == 0 {
		source = entity.SourceWebLLM
	}
	return uc.result(plan, snapshot, source, detail)
}

// finalize is the deterministic fallback: whatever the map holds plus
// the navigation action.
func (uc *UseCase) finalize(plan *actionMap, snapshot *entity.FormSnapshot, proseCount int, reasons []string) *entity.PlanResult {
	source := entity.SourceRuleBased
	if proseCount > 0 {
		source = entity.SourceHybrid
	}
	return uc.result(plan, snapshot, source, strings.Join(reasons, "; "))
}

func (uc *UseCase) result(plan *actionMap, snapshot *entity.FormSnapshot, source entity.PlanSource, detail string) *entity.PlanResult {
	actions := plan.Actions()
	if nav := uc.rules.NavigationAction(snapshot); nav != nil {
		actions = append(actions, *nav)
	}
	actions = sortPlan(actions)

	uc.logger.Info("Plan finalized", "source", source, "actions", len(actions), "detail", detail)
	return &entity.PlanResult{
		Source:  source,
		Actions: actions,
		Detail:  detail,
	}
}

// withSnapshotJob prefers job context captured with the form when the
// stored context has none. The caller's context is never mutated.
func withSnapshotJob(agentCtx *entity.AgentContext, snapshot *entity.FormSnapshot) *entity.AgentContext {
	if agentCtx == nil {
		agentCtx = &entity.AgentContext{}
	}
	if agentCtx.Job != nil || snapshot.Job == nil {
		return agentCtx
	}
	enriched := *agentCtx
	enriched.Job = snapshot.Job
	return &enriched
}
