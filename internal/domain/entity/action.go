package entity

// ActionType is the kind of fill or navigation step an action performs.
type ActionType string

const (
	ActionSetValue    ActionType = "setValue"
	ActionSetSelect   ActionType = "setSelect"
	ActionSetCheckbox ActionType = "setCheckbox"
	ActionSetRadio    ActionType = "setRadio"
	ActionClickNext   ActionType = "clickNext"
)

// Known reports whether t is one of the five action kinds.
func (t ActionType) Known() bool {
	switch t {
	case ActionSetValue, ActionSetSelect, ActionSetCheckbox, ActionSetRadio, ActionClickNext:
		return true
	}
	return false
}

// IsFill reports whether the action writes a field rather than
// navigating. All fill actions are ordered before clickNext in a plan.
func (t ActionType) IsFill() bool {
	return t != ActionClickNext && t.Known()
}

// AgentAction is one executable planner output unit. At most one action
// exists per selector in a returned plan.
type AgentAction struct {
	ID         string     `json:"id"`
	Type       ActionType `json:"type"`
	Selector   string     `json:"selector"`
	FieldLabel string     `json:"fieldLabel"`
	Value      string     `json:"value"`
	Reasoning  string     `json:"reasoning"`
	Confidence float64    `json:"confidence"`
}

// PlanSource tags how a plan was derived.
type PlanSource string

const (
	// SourceRuleBased means only deterministic heuristics contributed.
	SourceRuleBased PlanSource = "rule-based"
	// SourceHybrid means deterministic actions were combined with
	// generated prose or generative refinement.
	SourceHybrid PlanSource = "hybrid"
	// SourceWebLLM means every fill action came from the generative
	// backend with nothing to refine.
	SourceWebLLM PlanSource = "webllm"
)

// PlanResult is the artifact returned by the planner. Detail is an
// advisory audit string, never used for control flow.
type PlanResult struct {
	Source  PlanSource    `json:"source"`
	Actions []AgentAction `json:"actions"`
	Detail  string        `json:"detail,omitempty"`
}
