package entity

import "time"

// JobContext is an optional description of the job posting the form
// belongs to, used to ground generated prose.
type JobContext struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Description string `json:"description,omitempty"`
}

// FormSnapshot is an immutable capture of a form's state at one point
// in time. The planner treats it as read-only input.
type FormSnapshot struct {
	URL        string             `json:"url"`
	Title      string             `json:"title"`
	CapturedAt time.Time          `json:"captured_at"`
	Fields     []ExtractedField   `json:"fields"`
	Navigation []NavigationTarget `json:"navigation,omitempty"`
	Job        *JobContext        `json:"job,omitempty"`
}

// KnownSelectors returns the union of field and navigation selectors.
// Actions naming any other selector are discarded by the planner.
func (s *FormSnapshot) KnownSelectors() map[string]struct{} {
	known := make(map[string]struct{}, len(s.Fields)+len(s.Navigation))
	for _, f := range s.Fields {
		known[f.Selector] = struct{}{}
	}
	for _, n := range s.Navigation {
		known[n.Selector] = struct{}{}
	}
	return known
}

// FieldBySelector returns the field captured under selector, if any.
func (s *FormSnapshot) FieldBySelector(selector string) (ExtractedField, bool) {
	for _, f := range s.Fields {
		if f.Selector == selector {
			return f, true
		}
	}
	return ExtractedField{}, false
}
