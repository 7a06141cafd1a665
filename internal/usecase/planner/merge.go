package planner

import (
	"sort"

	"formpilot/internal/domain/entity"
)

// actionMap keys actions by target selector so later passes supersede
// earlier ones (rule-based < pre-resolved < generative-refined). A
// selector keeps its first insertion position across overwrites, which
// keeps the final ordering stable. When two snapshot fields share a
// selector only the later field's action survives.
type actionMap struct {
	order      []string
	bySelector map[string]entity.AgentAction
}

func newActionMap() *actionMap {
	return &actionMap{bySelector: make(map[string]entity.AgentAction)}
}

func (m *actionMap) Merge(action entity.AgentAction) {
	if _, ok := m.bySelector[action.Selector]; !ok {
		m.order = append(m.order, action.Selector)
	}
	m.bySelector[action.Selector] = action
}

func (m *actionMap) Has(selector string) bool {
	_, ok := m.bySelector[selector]
	return ok
}

func (m *actionMap) Len() int {
	return len(m.order)
}

// Snapshot returns the selector-keyed view used by the prompt builder.
func (m *actionMap) Snapshot() map[string]entity.AgentAction {
	return m.bySelector
}

// Actions returns the merged actions in first-insertion order.
func (m *actionMap) Actions() []entity.AgentAction {
	actions := make([]entity.AgentAction, 0, len(m.order))
	for _, selector := range m.order {
		actions = append(actions, m.bySelector[selector])
	}
	return actions
}

// sortPlan orders every fill action before every clickNext action,
// stable otherwise.
func sortPlan(actions []entity.AgentAction) []entity.AgentAction {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Type.IsFill() && !actions[j].Type.IsFill()
	})
	return actions
}
