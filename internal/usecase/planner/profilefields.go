package planner

import (
	"strings"

	"formpilot/internal/domain/entity"
)

// profileHint maps one profile key to the phrases that select it when
// found inside a field's combined label/name/placeholder text.
type profileHint struct {
	key   string
	terms []string
}

// profileHints is walked in order and the first hit wins, so specific
// phrases must precede general ones ("first name" before "name").
var profileHints = []profileHint{
	{"firstName", []string{"first name", "given name", "firstname", "forename"}},
	{"lastName", []string{"last name", "family name", "surname", "lastname"}},
	{"email", []string{"email", "e-mail"}},
	{"phone", []string{"phone", "mobile", "telephone"}},
	{"linkedin", []string{"linkedin"}},
	{"github", []string{"github"}},
	{"website", []string{"portfolio", "website", "personal site"}},
	{"zip", []string{"zip", "postal"}},
	{"address", []string{"street address", "address line", "street"}},
	{"city", []string{"city", "town"}},
	{"state", []string{"state", "province", "region"}},
	{"country", []string{"country", "nationality"}},
	{"title", []string{"current title", "job title", "current role", "position", "title"}},
	{"yearsExperience", []string{"years of experience", "years experience", "how many years"}},
	{"workAuthorization", []string{"work authorization", "authorized to work", "legally authorized", "right to work", "work permit"}},
	{"sponsorship", []string{"sponsorship", "visa"}},
	{"fullName", []string{"full name", "your name", "legal name", "name"}},
}

// FieldValueResolver maps a field's descriptive text onto a value from
// the user's profile.
type FieldValueResolver struct{}

func NewFieldValueResolver() *FieldValueResolver {
	return &FieldValueResolver{}
}

// Resolve returns the profile value for the first hint phrase found in
// the field's combined description, or "" when nothing applies.
func (r *FieldValueResolver) Resolve(field entity.ExtractedField, agentCtx *entity.AgentContext) string {
	if agentCtx == nil {
		return ""
	}
	combined := normalize(field.Label + " " + field.Name + " " + field.Placeholder)
	if combined == "" {
		return ""
	}

	for _, hint := range profileHints {
		for _, term := range hint.terms {
			if !strings.Contains(combined, term) {
				continue
			}
			if v := agentCtx.Profile.Get(hint.key); v != "" {
				return v
			}
			break // hint matched but profile has no value; try next key
		}
	}

	if strings.Contains(combined, "location") || strings.Contains(combined, "address") {
		return composeLocation(agentCtx.Profile)
	}
	return ""
}

// composeLocation falls back to "city, state, country", omitting empty
// parts.
func composeLocation(profile entity.Profile) string {
	parts := make([]string, 0, 3)
	for _, key := range []string{"city", "state", "country"} {
		if v := profile.Get(key); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
