package rodwrapper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
)

var _ output.ActionExecutorPort = (*Executor)(nil)

// Executor applies one approved action at a time to the live page. It
// never submits the form: clickNext only ever targets the navigation
// selector the snapshot reported.
type Executor struct {
	browser *Browser
	logger  output.LoggerPort
}

func NewExecutor(browser *Browser, logger output.LoggerPort) *Executor {
	return &Executor{browser: browser, logger: logger}
}

func (e *Executor) Apply(ctx context.Context, action entity.AgentAction) error {
	e.logger.Info("Applying action",
		"type", action.Type,
		"selector", action.Selector,
		"label", action.FieldLabel,
	)

	switch action.Type {
	case entity.ActionSetValue:
		return e.fill(action.Selector, action.Value)
	case entity.ActionSetSelect:
		return e.selectOption(action.Selector, action.Value)
	case entity.ActionSetCheckbox:
		return e.setChecked(action.Selector, action.Value == "true")
	case entity.ActionSetRadio:
		return e.pickRadio(action.Selector, action.Value)
	case entity.ActionClickNext:
		return e.click(action.Selector)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

func (e *Executor) element(selector string) (*rod.Element, error) {
	page := e.browser.Page()
	if strings.HasPrefix(selector, "/") {
		return page.Timeout(e.browser.timeout).ElementX(selector)
	}
	return page.Timeout(e.browser.timeout).Element(selector)
}

func (e *Executor) fill(selector, text string) error {
	el, err := e.element(selector)
	if err != nil {
		return fmt.Errorf("field not found: %s: %w", selector, err)
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (e *Executor) selectOption(selector, value string) error {
	el, err := e.element(selector)
	if err != nil {
		return fmt.Errorf("select not found: %s: %w", selector, err)
	}

	optSelector := fmt.Sprintf(`option[value=%q]`, value)
	if err := el.Select([]string{optSelector}, true, rod.SelectorTypeCSSSector); err != nil {
		return fmt.Errorf("option %q not selectable: %w", value, err)
	}
	return nil
}

func (e *Executor) setChecked(selector string, desired bool) error {
	el, err := e.element(selector)
	if err != nil {
		return fmt.Errorf("checkbox not found: %s: %w", selector, err)
	}

	res, err := el.Eval(`() => this.checked === true`)
	if err != nil {
		return fmt.Errorf("read checkbox state: %w", err)
	}
	if res.Value.Bool() == desired {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("toggle failed: %w", err)
	}
	return nil
}

// pickRadio clicks the group member carrying value, falling back to the
// group selector itself when no member matches.
func (e *Executor) pickRadio(selector, value string) error {
	withValue := fmt.Sprintf(`%s[value=%q]`, selector, value)
	el, err := e.element(withValue)
	if err != nil {
		el, err = e.element(selector)
		if err != nil {
			return fmt.Errorf("radio not found: %s: %w", selector, err)
		}
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("radio click failed: %w", err)
	}
	return nil
}

func (e *Executor) click(selector string) error {
	el, err := e.element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	e.browser.Page().WaitIdle(2 * time.Second)
	return nil
}
