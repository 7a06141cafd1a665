package planner

import (
	"strings"

	"github.com/xrash/smetrics"

	"formpilot/internal/domain/entity"
)

// similarityThreshold is the minimum Jaro-Winkler score accepted when no
// exact, alias, or substring match was found.
const similarityThreshold = 0.85

// aliasGroups are canonical synonym sets. A target normalizing into a
// group is retried against every member of that group.
var aliasGroups = [][]string{
	{"united states", "us", "usa", "u.s.", "u.s.a.", "united states of america", "america"},
	{"united kingdom", "uk", "u.k.", "great britain", "gb"},
	{"canada", "can"},
	{"germany", "deutschland", "de"},
	{"netherlands", "the netherlands", "nl", "holland"},
	{"yes", "y", "true"},
	{"no", "n", "false"},
	{"male", "m", "man"},
	{"female", "f", "woman"},
	{"prefer not to say", "decline to state", "prefer not to answer"},
}

// OptionResolver maps a free-text target value onto one of a field's
// enumerated options. No match is a normal outcome, reported as "".
type OptionResolver struct{}

func NewOptionResolver() *OptionResolver {
	return &OptionResolver{}
}

// Resolve returns the matched option's value, or "" when nothing in the
// field's option list is an acceptable match for target.
func (r *OptionResolver) Resolve(field entity.ExtractedField, target string) string {
	norm := normalize(target)
	if norm == "" || len(field.Options) == 0 {
		return ""
	}

	if v, ok := r.exactMatch(field.Options, norm); ok {
		return v
	}

	for _, alias := range expandAliases(norm) {
		if v, ok := r.exactMatch(field.Options, alias); ok {
			return v
		}
	}

	for _, opt := range field.Options {
		label := normalize(opt.Label)
		if label == "" {
			continue
		}
		if strings.Contains(label, norm) || strings.Contains(norm, label) {
			return opt.Value
		}
	}

	return r.closestMatch(field.Options, norm)
}

func (r *OptionResolver) exactMatch(options []entity.FieldOption, norm string) (string, bool) {
	for _, opt := range options {
		if normalize(opt.Value) == norm {
			return opt.Value, true
		}
	}
	for _, opt := range options {
		if normalize(opt.Label) == norm {
			return opt.Value, true
		}
	}
	return "", false
}

func (r *OptionResolver) closestMatch(options []entity.FieldOption, norm string) string {
	best := ""
	bestScore := 0.0
	for _, opt := range options {
		score := similarity(norm, normalize(opt.Label))
		if s := similarity(norm, normalize(opt.Value)); s > score {
			score = s
		}
		if score > bestScore {
			bestScore = score
			best = opt.Value
		}
	}
	if bestScore < similarityThreshold {
		return ""
	}
	return best
}

// expandAliases returns every member of the synonym group norm belongs
// to, canonical form included, or nil when norm is in no group.
func expandAliases(norm string) []string {
	for _, group := range aliasGroups {
		for _, member := range group {
			if member == norm {
				return group
			}
		}
	}
	return nil
}

// similarity is Jaro-Winkler with the standard 0.1 prefix bonus capped
// at 4 shared leading characters.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, 0.1, 4)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
