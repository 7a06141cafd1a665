package entity

import "strings"

// FieldKind is the semantic kind of a captured form control.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldEmail    FieldKind = "email"
	FieldTel      FieldKind = "tel"
	FieldURL      FieldKind = "url"
	FieldNumber   FieldKind = "number"
	FieldCheckbox FieldKind = "checkbox"
	FieldRadio    FieldKind = "radio"
	FieldSelect   FieldKind = "select"
	FieldDate     FieldKind = "date"
	FieldTextarea FieldKind = "textarea"
	FieldUnknown  FieldKind = "unknown"
)

// FieldOption is one enumerated choice of a select or radio control.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ExtractedField is one form control as captured from the live page.
// Selector is expected to resolve to exactly one visible, enabled element
// for the lifetime of the snapshot; the planner only echoes it back.
type ExtractedField struct {
	ID          string        `json:"id"`
	Selector    string        `json:"selector"`
	Kind        FieldKind     `json:"kind"`
	Label       string        `json:"label"`
	Name        string        `json:"name"`
	Placeholder string        `json:"placeholder"`
	Required    bool          `json:"required"`
	Options     []FieldOption `json:"options,omitempty"`
	// Value is the current value; for checkbox/radio it is "true"/"false".
	Value string `json:"value"`
}

// HasMeaningfulValue reports whether the field already holds something
// worth keeping: checked for checkbox/radio, non-blank text otherwise.
func (f ExtractedField) HasMeaningfulValue() bool {
	if f.Kind == FieldCheckbox || f.Kind == FieldRadio {
		return f.Value == "true"
	}
	return strings.TrimSpace(f.Value) != ""
}

// NavigationTarget is a clickable control believed to advance a
// multi-step form. Only the first discovered target is ever planned for.
type NavigationTarget struct {
	ID       string `json:"id"`
	Selector string `json:"selector"`
	Text     string `json:"text"`
}
