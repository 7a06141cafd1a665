package rodwrapper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
)

var _ output.SnapshotPort = (*Extractor)(nil)

const (
	maxFields         = 200
	maxDescriptionLen = 600
)

var (
	nextButtonRe = regexp.MustCompile(`(?i)\b(next|continue|proceed|review)\b`)
	submitLikeRe = regexp.MustCompile(`(?i)\b(submit|apply|send)\b`)
)

// fieldProbeJS reads every attribute the planner needs from one control
// in a single round trip.
const fieldProbeJS = `() => {
	const el = this;
	const tag = el.tagName.toLowerCase();
	const type = (el.getAttribute('type') || '').toLowerCase();
	let label = '';
	if (el.labels && el.labels.length > 0) label = el.labels[0].innerText.trim();
	if (!label) label = el.getAttribute('aria-label') || '';
	if (!label) {
		const legend = el.closest('fieldset');
		if (legend) {
			const lg = legend.querySelector('legend');
			if (lg) label = lg.innerText.trim();
		}
	}
	let options = [];
	if (tag === 'select') {
		options = Array.from(el.options)
			.filter(o => o.value !== '')
			.map(o => ({label: o.label.trim(), value: o.value}));
	}
	const value = (type === 'checkbox' || type === 'radio')
		? String(el.checked)
		: (el.value || '');
	return {
		tag: tag,
		type: type,
		name: el.getAttribute('name') || '',
		placeholder: el.getAttribute('placeholder') || '',
		label: label,
		required: el.required === true,
		disabled: el.disabled === true,
		value: value,
		optionValue: el.getAttribute('value') || '',
		options: options,
	};
}`

// cssPathJS derives a selector that addresses exactly this element: id
// when present, name attribute next, positional path as a last resort.
const cssPathJS = `() => {
	const el = this;
	if (el.id) return '#' + CSS.escape(el.id);
	const tag = el.tagName.toLowerCase();
	const name = el.getAttribute('name');
	if (name && el.type !== 'radio') return tag + '[name="' + name + '"]';
	if (name) return tag + '[type="radio"][name="' + name + '"]';
	const parts = [];
	let node = el;
	while (node && node.nodeType === Node.ELEMENT_NODE && parts.length < 6) {
		let part = node.tagName.toLowerCase();
		const parent = node.parentElement;
		if (parent) {
			const siblings = Array.from(parent.children).filter(c => c.tagName === node.tagName);
			if (siblings.length > 1) part += ':nth-of-type(' + (siblings.indexOf(node) + 1) + ')';
		}
		parts.unshift(part);
		node = parent;
		if (node && node.id) {
			parts.unshift('#' + CSS.escape(node.id));
			break;
		}
	}
	return parts.join(' > ');
}`

// Extractor captures the form state of the live page as an immutable
// snapshot. The planner never touches the DOM; this is its only window
// into it.
type Extractor struct {
	browser *Browser
	logger  output.LoggerPort
}

func NewExtractor(browser *Browser, logger output.LoggerPort) *Extractor {
	return &Extractor{browser: browser, logger: logger}
}

func (e *Extractor) ExtractSnapshot(ctx context.Context) (*entity.FormSnapshot, error) {
	page := e.browser.Page()

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("page info: %w", err)
	}

	fields, err := e.extractFields(page)
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}

	snapshot := &entity.FormSnapshot{
		URL:        info.URL,
		Title:      info.Title,
		CapturedAt: time.Now(),
		Fields:     fields,
		Navigation: e.extractNavigation(page),
		Job:        e.extractJobContext(page),
	}

	e.logger.Info("Snapshot captured",
		"url", snapshot.URL,
		"fields", len(snapshot.Fields),
		"navTargets", len(snapshot.Navigation),
	)
	return snapshot, nil
}

type radioGroup struct {
	field entity.ExtractedField
	seen  map[string]bool
}

func (e *Extractor) extractFields(page *rod.Page) ([]entity.ExtractedField, error) {
	elements, err := page.Elements("input, select, textarea")
	if err != nil {
		return nil, err
	}

	var fields []entity.ExtractedField
	radios := make(map[string]*radioGroup)
	var radioOrder []string
	counter := 0

	for _, el := range elements {
		if counter >= maxFields {
			break
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}

		probe, err := el.Eval(fieldProbeJS)
		if err != nil {
			continue
		}
		p := probe.Value
		if p.Get("disabled").Bool() {
			continue
		}

		kind := fieldKind(p.Get("tag").Str(), p.Get("type").Str())
		if kind == "" {
			continue // hidden, file, button-like: not plannable
		}

		selRes, err := el.Eval(cssPathJS)
		if err != nil {
			continue
		}
		selector := selRes.Value.Str()

		if kind == entity.FieldRadio {
			e.addRadioOption(radios, &radioOrder, selector, p, &counter)
			continue
		}

		field := entity.ExtractedField{
			ID:          fmt.Sprintf("field-%04d", counter),
			Selector:    selector,
			Kind:        kind,
			Label:       p.Get("label").Str(),
			Name:        p.Get("name").Str(),
			Placeholder: p.Get("placeholder").Str(),
			Required:    p.Get("required").Bool(),
			Value:       p.Get("value").Str(),
		}
		if kind == entity.FieldSelect {
			for _, opt := range p.Get("options").Arr() {
				field.Options = append(field.Options, entity.FieldOption{
					Label: opt.Get("label").Str(),
					Value: opt.Get("value").Str(),
				})
			}
			// reported value of an unselected select is its first option
			if len(field.Options) > 0 && field.Value == field.Options[0].Value && !selectedExplicitly(el) {
				field.Value = ""
			}
		}
		fields = append(fields, field)
		counter++
	}

	for _, name := range radioOrder {
		fields = append(fields, radios[name].field)
	}
	return fields, nil
}

// addRadioOption folds one radio input into its group's single field:
// the group is planned as one radio field whose options are the
// individual inputs.
func (e *Extractor) addRadioOption(radios map[string]*radioGroup, order *[]string, selector string, p gson.JSON, counter *int) {
	name := p.Get("name").Str()
	if name == "" {
		return
	}

	group, ok := radios[name]
	if !ok {
		group = &radioGroup{
			field: entity.ExtractedField{
				ID:       fmt.Sprintf("field-%04d", *counter),
				Selector: selector,
				Kind:     entity.FieldRadio,
				Label:    p.Get("label").Str(),
				Name:     name,
				Required: p.Get("required").Bool(),
				Value:    "false",
			},
			seen: make(map[string]bool),
		}
		radios[name] = group
		*order = append(*order, name)
		*counter++
	}

	optValue := p.Get("optionValue").Str()
	if optValue != "" && !group.seen[optValue] {
		group.seen[optValue] = true
		group.field.Options = append(group.field.Options, entity.FieldOption{
			Label: p.Get("label").Str(),
			Value: optValue,
		})
	}
	// probe value for a radio is its checked state
	if p.Get("value").Str() == "true" {
		group.field.Value = "true"
	}
}

func (e *Extractor) extractNavigation(page *rod.Page) []entity.NavigationTarget {
	elements, err := page.Elements("button, input[type='submit'], input[type='button'], [role='button']")
	if err != nil {
		return nil
	}

	var targets []entity.NavigationTarget
	for _, el := range elements {
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}

		text, _ := el.Text()
		text = strings.TrimSpace(text)
		if text == "" {
			if v, err := el.Attribute("value"); err == nil && v != nil {
				text = strings.TrimSpace(*v)
			}
		}
		if text == "" || !nextButtonRe.MatchString(text) || submitLikeRe.MatchString(text) {
			continue
		}

		selRes, err := el.Eval(cssPathJS)
		if err != nil {
			continue
		}
		targets = append(targets, entity.NavigationTarget{
			ID:       fmt.Sprintf("nav-%04d", len(targets)),
			Selector: selRes.Value.Str(),
			Text:     text,
		})
	}
	return targets
}

// extractJobContext pulls a job description block off the page when one
// is recognizable, for grounding generated prose.
func (e *Extractor) extractJobContext(page *rod.Page) *entity.JobContext {
	job := &entity.JobContext{}

	if el, err := page.Sleeper(rod.NotFoundSleeper).Element("h1"); err == nil {
		if text, err := el.Text(); err == nil {
			job.Title = strings.TrimSpace(text)
		}
	}
	if el, err := page.Sleeper(rod.NotFoundSleeper).Element(`meta[property="og:site_name"]`); err == nil {
		if v, err := el.Attribute("content"); err == nil && v != nil {
			job.Company = strings.TrimSpace(*v)
		}
	}

	descSelectors := `#job-description, .job-description, [class*="jobDescription"], [data-testid*="description"]`
	if el, err := page.Sleeper(rod.NotFoundSleeper).Element(descSelectors); err == nil {
		if raw, err := el.HTML(); err == nil {
			desc := TextFromHTML(raw)
			if len(desc) > maxDescriptionLen {
				desc = desc[:maxDescriptionLen]
			}
			job.Description = desc
		}
	}

	if job.Title == "" && job.Company == "" && job.Description == "" {
		return nil
	}
	return job
}

func fieldKind(tag, inputType string) entity.FieldKind {
	switch tag {
	case "select":
		return entity.FieldSelect
	case "textarea":
		return entity.FieldTextarea
	}

	switch inputType {
	case "", "text", "search":
		return entity.FieldText
	case "email":
		return entity.FieldEmail
	case "tel":
		return entity.FieldTel
	case "url":
		return entity.FieldURL
	case "number":
		return entity.FieldNumber
	case "checkbox":
		return entity.FieldCheckbox
	case "radio":
		return entity.FieldRadio
	case "date":
		return entity.FieldDate
	case "hidden", "file", "submit", "button", "image", "reset":
		return ""
	default:
		return entity.FieldUnknown
	}
}

// selectedExplicitly reports whether a select has a user- or
// markup-chosen option rather than the browser's default first option.
func selectedExplicitly(el *rod.Element) bool {
	res, err := el.Eval(`() => this.selectedIndex > 0 || (this.options[0] && this.options[0].hasAttribute('selected'))`)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}
