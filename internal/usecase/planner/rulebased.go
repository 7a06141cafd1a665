package planner

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"formpilot/internal/domain/entity"
)

const (
	// baseConfidence is jittered by up to half of confidenceSpread in
	// either direction so downstream consumers never see uniform ties.
	baseConfidence   = 0.62
	confidenceSpread = 0.08

	navConfidence         = 0.58
	preResolveConfidence  = 0.85
	generatedConfidence   = 0.75
	navigationReasoning   = "Detected likely navigation control."
	preResolveReasoning   = "Pre-resolved against the option list before generative review."
	generatedReasoning    = "Generated from resume and job context."
	truthyCheckboxMarkers = "yes true 1 required"
)

// RuleBasedPlanner produces the deterministic baseline plan: one action
// per empty, non-generative field the profile can answer, plus a single
// trailing navigation action.
type RuleBasedPlanner struct {
	values  *FieldValueResolver
	options *OptionResolver
	rng     *rand.Rand
}

func NewRuleBasedPlanner(values *FieldValueResolver, options *OptionResolver, rng *rand.Rand) *RuleBasedPlanner {
	return &RuleBasedPlanner{values: values, options: options, rng: rng}
}

// Plan returns the full baseline: field actions followed by the
// navigation action when one exists.
func (p *RuleBasedPlanner) Plan(snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext) []entity.AgentAction {
	actions := p.FieldActions(snapshot, agentCtx)
	if nav := p.NavigationAction(snapshot); nav != nil {
		actions = append(actions, *nav)
	}
	return actions
}

// FieldActions plans fill actions only.
func (p *RuleBasedPlanner) FieldActions(snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext) []entity.AgentAction {
	var actions []entity.AgentAction
	for _, field := range snapshot.Fields {
		if field.HasMeaningfulValue() || IsGenerativeField(field.Label, field.Kind) {
			continue
		}
		candidate := p.values.Resolve(field, agentCtx)
		if action, ok := p.fieldAction(field, candidate); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

func (p *RuleBasedPlanner) fieldAction(field entity.ExtractedField, candidate string) (entity.AgentAction, bool) {
	switch field.Kind {
	case entity.FieldSelect:
		matched := p.options.Resolve(field, candidate)
		if matched == "" {
			return entity.AgentAction{}, false
		}
		return p.newAction(entity.ActionSetSelect, field, matched,
			fmt.Sprintf("Matched %q against the option list.", candidate)), true

	case entity.FieldCheckbox:
		value := "false"
		if isTruthy(candidate) {
			value = "true"
		}
		return p.newAction(entity.ActionSetCheckbox, field, value,
			"Interpreted profile answer as a checkbox state."), true

	case entity.FieldRadio:
		if candidate == "" {
			return entity.AgentAction{}, false
		}
		value := p.options.Resolve(field, candidate)
		if value == "" {
			value = candidate // last resort: let the executor try the raw value
		}
		return p.newAction(entity.ActionSetRadio, field, value,
			fmt.Sprintf("Matched %q against the radio group.", candidate)), true

	default:
		if candidate == "" {
			return entity.AgentAction{}, false
		}
		return p.newAction(entity.ActionSetValue, field, candidate,
			"Heuristic match between the field description and the profile."), true
	}
}

// NavigationAction returns a clickNext action for the first navigation
// target, or nil when the snapshot has none.
func (p *RuleBasedPlanner) NavigationAction(snapshot *entity.FormSnapshot) *entity.AgentAction {
	if len(snapshot.Navigation) == 0 {
		return nil
	}
	nav := snapshot.Navigation[0]
	return &entity.AgentAction{
		ID:         uuid.NewString(),
		Type:       entity.ActionClickNext,
		Selector:   nav.Selector,
		FieldLabel: nav.Text,
		Reasoning:  navigationReasoning,
		Confidence: navConfidence,
	}
}

// PreResolveSelects re-attempts every unfilled select field ahead of the
// generative pass, so the model reviews a concrete guess instead of
// inventing one.
func (p *RuleBasedPlanner) PreResolveSelects(snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext) []entity.AgentAction {
	var actions []entity.AgentAction
	for _, field := range snapshot.Fields {
		if field.Kind != entity.FieldSelect || field.HasMeaningfulValue() {
			continue
		}
		candidate := p.values.Resolve(field, agentCtx)
		matched := p.options.Resolve(field, candidate)
		if matched == "" {
			continue
		}
		actions = append(actions, entity.AgentAction{
			ID:         uuid.NewString(),
			Type:       entity.ActionSetSelect,
			Selector:   field.Selector,
			FieldLabel: field.Label,
			Value:      matched,
			Reasoning:  preResolveReasoning,
			Confidence: preResolveConfidence,
		})
	}
	return actions
}

func (p *RuleBasedPlanner) newAction(t entity.ActionType, field entity.ExtractedField, value, reasoning string) entity.AgentAction {
	return entity.AgentAction{
		ID:         uuid.NewString(),
		Type:       t,
		Selector:   field.Selector,
		FieldLabel: field.Label,
		Value:      value,
		Reasoning:  reasoning,
		Confidence: p.jitteredConfidence(),
	}
}

func (p *RuleBasedPlanner) jitteredConfidence() float64 {
	conf := baseConfidence + (p.rng.Float64()-0.5)*confidenceSpread
	return clampConfidence(conf)
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func isTruthy(s string) bool {
	s = normalize(s)
	if s == "" {
		return false
	}
	for _, marker := range strings.Fields(truthyCheckboxMarkers) {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
