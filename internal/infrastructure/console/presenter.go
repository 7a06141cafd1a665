package console

import (
	"fmt"

	"github.com/fatih/color"

	"formpilot/internal/domain/entity"
)

// Presenter renders plans and execution progress to the terminal.
type Presenter struct{}

func NewPresenter() *Presenter {
	return &Presenter{}
}

func (p *Presenter) ShowPlan(plan *entity.PlanResult) {
	header := color.New(color.FgCyan, color.Bold)
	header.Printf("\n━━━ Plan (%s, %d actions) ━━━\n", plan.Source, len(plan.Actions))

	dim := color.New(color.Faint)
	for i, action := range plan.Actions {
		p.showAction(i+1, action)
	}

	if plan.Detail != "" {
		dim.Printf("\n%s\n", plan.Detail)
	}
}

func (p *Presenter) showAction(n int, action entity.AgentAction) {
	yellow := color.New(color.FgYellow, color.Bold)
	dim := color.New(color.Faint)

	label := action.FieldLabel
	if label == "" {
		label = action.Selector
	}

	switch action.Type {
	case entity.ActionClickNext:
		yellow.Printf("%2d. click %q\n", n, label)
	default:
		yellow.Printf("%2d. %s %q ← %s\n", n, action.Type, label, truncate(action.Value, 60))
	}
	dim.Printf("    %s | confidence %.2f | %s\n", action.Selector, action.Confidence, action.Reasoning)
}

func (p *Presenter) ShowApplied(action entity.AgentAction, err error) {
	if err != nil {
		red := color.New(color.FgRed)
		red.Printf("✗ %s %s: %v\n", action.Type, action.Selector, err)
		return
	}
	green := color.New(color.FgGreen)
	green.Printf("✓ %s %s\n", action.Type, action.Selector)
}

func (p *Presenter) ShowError(msg string, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("\n%s: %v\n", msg, err)
}

func (p *Presenter) ShowInfo(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
