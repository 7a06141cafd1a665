package planner

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                          {}
func (nopLogger) Info(string, ...any)                           {}
func (nopLogger) Warn(string, ...any)                           {}
func (nopLogger) Error(string, ...any)                          {}
func (l nopLogger) WithField(string, any) output.LoggerPort     { return l }
func (l nopLogger) WithFields(map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                  { return nil }

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeLLM) RunPrompt(_ context.Context, _, _, _ string) (string, error) {
	i := f.calls
	f.calls++
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return resp, err
}

func newUseCase(llm output.GenerativePort, proseGen output.ProseGeneratorPort) *UseCase {
	return New(llm, proseGen, nopLogger{}, rand.New(rand.NewSource(7)))
}

func planSnapshot() *entity.FormSnapshot {
	return &entity.FormSnapshot{
		URL: "https://jobs.example.com/apply",
		Fields: []entity.ExtractedField{
			{Selector: "#email", Kind: entity.FieldEmail, Label: "Email Address"},
			{Selector: "#salary", Kind: entity.FieldText, Label: "Desired Salary"},
			{
				Selector: "#country", Kind: entity.FieldSelect, Label: "Country",
				Options: []entity.FieldOption{
					{Label: "United States", Value: "US"},
					{Label: "United Kingdom", Value: "GB"},
				},
			},
		},
		Navigation: []entity.NavigationTarget{{Selector: "#next", Text: "Next"}},
	}
}

func actionBySelector(actions []entity.AgentAction, selector string) (entity.AgentAction, bool) {
	for _, a := range actions {
		if a.Selector == selector {
			return a, true
		}
	}
	return entity.AgentAction{}, false
}

func TestBuildActionPlan_NoBackend(t *testing.T) {
	uc := newUseCase(nil, nil)

	plan := uc.BuildActionPlan(context.Background(), planSnapshot(), testContext())

	assert.Equal(t, entity.SourceRuleBased, plan.Source)
	assert.Contains(t, plan.Detail, "no generative backend configured")

	email, ok := actionBySelector(plan.Actions, "#email")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", email.Value)

	country, ok := actionBySelector(plan.Actions, "#country")
	require.True(t, ok)
	assert.Equal(t, "GB", country.Value)

	// unresolvable field planned only when the model contributes
	_, ok = actionBySelector(plan.Actions, "#salary")
	assert.False(t, ok)

	last := plan.Actions[len(plan.Actions)-1]
	assert.Equal(t, entity.ActionClickNext, last.Type)
}

func TestBuildActionPlan_HybridRefinement(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"actions": [
			{"selector": "#salary", "type": "setValue", "value": "90000", "confidence": 0.7},
			{"selector": "#evil", "type": "setValue", "value": "x"},
			{"selector": "#next", "type": "clickNext"}
		]}`,
	}}
	uc := newUseCase(llm, nil)

	plan := uc.BuildActionPlan(context.Background(), planSnapshot(), testContext())

	assert.Equal(t, entity.SourceHybrid, plan.Source)
	assert.Equal(t, 1, llm.calls)
	assert.Contains(t, plan.Detail, "generative refinement applied to 1")

	salary, ok := actionBySelector(plan.Actions, "#salary")
	require.True(t, ok)
	assert.Equal(t, "90000", salary.Value)

	// selectors outside the snapshot never survive the merge
	_, ok = actionBySelector(plan.Actions, "#evil")
	assert.False(t, ok)

	clicks := 0
	for _, a := range plan.Actions {
		if a.Type == entity.ActionClickNext {
			clicks++
		}
	}
	assert.Equal(t, 1, clicks)
	assert.Equal(t, entity.ActionClickNext, plan.Actions[len(plan.Actions)-1].Type)
}

func TestBuildActionPlan_SelectValuesRevalidated(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"actions": [
			{"selector": "#country", "type": "setSelect", "value": "United States"},
			{"selector": "#salary", "type": "setSelect", "value": "nonsense"}
		]}`,
	}}
	uc := newUseCase(llm, nil)

	snapshot := planSnapshot()
	plan := uc.BuildActionPlan(context.Background(), snapshot, nil)

	country, ok := actionBySelector(plan.Actions, "#country")
	require.True(t, ok)
	assert.Equal(t, "US", country.Value)

	_, ok = actionBySelector(plan.Actions, "#salary")
	assert.False(t, ok)
}

func TestBuildActionPlan_UnavailableEngineSkipsRetry(t *testing.T) {
	llm := &fakeLLM{errs: []error{
		fmt.Errorf("no API key configured: %w", output.ErrEngineUnavailable),
	}}
	uc := newUseCase(llm, nil)

	plan := uc.BuildActionPlan(context.Background(), planSnapshot(), testContext())

	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, entity.SourceRuleBased, plan.Source)
	assert.Contains(t, plan.Detail, "retry skipped")
}

func TestBuildActionPlan_RetryAfterUnparseableResponse(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"I cannot answer in JSON today.",
		`{"actions": [{"selector": "#salary", "type": "setValue", "value": "90000"}]}`,
	}}
	uc := newUseCase(llm, nil)

	plan := uc.BuildActionPlan(context.Background(), planSnapshot(), testContext())

	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, entity.SourceHybrid, plan.Source)
	assert.Contains(t, plan.Detail, "retry applied 1 actions")
	assert.Contains(t, plan.Detail, "unparseable")

	salary, ok := actionBySelector(plan.Actions, "#salary")
	require.True(t, ok)
	assert.Equal(t, "90000", salary.Value)
}

func TestBuildActionPlan_BothAttemptsFail(t *testing.T) {
	llm := &fakeLLM{errs: []error{
		errors.New("timeout"),
		errors.New("timeout"),
	}}
	uc := newUseCase(llm, nil)

	plan := uc.BuildActionPlan(context.Background(), planSnapshot(), testContext())

	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, entity.SourceRuleBased, plan.Source)
	assert.Contains(t, plan.Detail, "attempt 1 failed")
	assert.Contains(t, plan.Detail, "attempt 2 failed")

	// the deterministic baseline still stands
	_, ok := actionBySelector(plan.Actions, "#email")
	assert.True(t, ok)
}

func TestBuildActionPlan_PureGenerativeSource(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"actions": [{"selector": "#salary", "type": "setValue", "value": "90000"}]}`,
	}}
	uc := newUseCase(llm, nil)

	// empty context: no rule can fire, everything comes from the model
	snapshot := &entity.FormSnapshot{
		Fields: []entity.ExtractedField{
			{Selector: "#salary", Kind: entity.FieldText, Label: "Desired Salary"},
		},
	}
	plan := uc.BuildActionPlan(context.Background(), snapshot, nil)

	assert.Equal(t, entity.SourceWebLLM, plan.Source)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, "#salary", plan.Actions[0].Selector)
}

func TestBuildActionPlan_ProseMakesPlanHybrid(t *testing.T) {
	gen := &fakeProseGenerator{content: "I build engines."}
	uc := newUseCase(nil, gen)

	snapshot := &entity.FormSnapshot{
		Fields: []entity.ExtractedField{
			{Selector: "#cover", Kind: entity.FieldTextarea, Label: "Cover Letter"},
		},
	}
	plan := uc.BuildActionPlan(context.Background(), snapshot, testContext())

	assert.Equal(t, entity.SourceHybrid, plan.Source)
	cover, ok := actionBySelector(plan.Actions, "#cover")
	require.True(t, ok)
	assert.Equal(t, "I build engines.", cover.Value)
}

func TestBuildActionPlan_JobContextFromSnapshot(t *testing.T) {
	uc := newUseCase(nil, nil)

	agentCtx := &entity.AgentContext{Profile: entity.Profile{"email": "a@b.c"}}
	snapshot := planSnapshot()
	snapshot.Job = &entity.JobContext{Title: "Engineer"}

	uc.BuildActionPlan(context.Background(), snapshot, agentCtx)

	// the caller's context must stay untouched
	assert.Nil(t, agentCtx.Job)
}

func TestSortPlan_FillsBeforeClick(t *testing.T) {
	actions := []entity.AgentAction{
		{Selector: "#next", Type: entity.ActionClickNext},
		{Selector: "#a", Type: entity.ActionSetValue},
		{Selector: "#b", Type: entity.ActionSetCheckbox},
	}

	sorted := sortPlan(actions)
	assert.Equal(t, "#a", sorted[0].Selector)
	assert.Equal(t, "#b", sorted[1].Selector)
	assert.Equal(t, "#next", sorted[2].Selector)
}

func TestActionMap_LastWriteWinsKeepsOrder(t *testing.T) {
	m := newActionMap()
	m.Merge(entity.AgentAction{Selector: "#a", Value: "1"})
	m.Merge(entity.AgentAction{Selector: "#b", Value: "2"})
	m.Merge(entity.AgentAction{Selector: "#a", Value: "3"})

	actions := m.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "#a", actions[0].Selector)
	assert.Equal(t, "3", actions[0].Value)
	assert.Equal(t, "#b", actions[1].Selector)
}
