package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"formpilot/internal/domain/entity"
)

func countryField() entity.ExtractedField {
	return entity.ExtractedField{
		Selector: "#country",
		Kind:     entity.FieldSelect,
		Label:    "Country",
		Options: []entity.FieldOption{
			{Label: "United States", Value: "US"},
			{Label: "Canada", Value: "CA"},
			{Label: "United Kingdom", Value: "GB"},
		},
	}
}

func TestOptionResolver_ExactValue(t *testing.T) {
	r := NewOptionResolver()
	assert.Equal(t, "US", r.Resolve(countryField(), "US"))
	assert.Equal(t, "US", r.Resolve(countryField(), "us"))
}

func TestOptionResolver_ExactLabel(t *testing.T) {
	r := NewOptionResolver()
	assert.Equal(t, "US", r.Resolve(countryField(), "United States"))
	assert.Equal(t, "CA", r.Resolve(countryField(), "  canada  "))
}

func TestOptionResolver_Alias(t *testing.T) {
	r := NewOptionResolver()
	assert.Equal(t, "US", r.Resolve(countryField(), "USA"))
	assert.Equal(t, "US", r.Resolve(countryField(), "America"))
	assert.Equal(t, "GB", r.Resolve(countryField(), "UK"))
}

func TestOptionResolver_Substring(t *testing.T) {
	r := NewOptionResolver()
	assert.Equal(t, "US", r.Resolve(countryField(), "States"))
}

func TestOptionResolver_FuzzyTypo(t *testing.T) {
	r := NewOptionResolver()
	assert.Equal(t, "US", r.Resolve(countryField(), "Unted Sates"))
}

func TestOptionResolver_NoMatch(t *testing.T) {
	r := NewOptionResolver()
	assert.Equal(t, "", r.Resolve(countryField(), "Australia"))
	assert.Equal(t, "", r.Resolve(countryField(), ""))
	assert.Equal(t, "", r.Resolve(countryField(), "   "))
}

func TestOptionResolver_RoundTrip(t *testing.T) {
	r := NewOptionResolver()
	field := entity.ExtractedField{
		Selector: "#country",
		Kind:     entity.FieldSelect,
		Options:  []entity.FieldOption{{Label: "United States", Value: "US"}},
	}

	for _, target := range []string{"US", "usa", "United States", "Unted Sates"} {
		assert.Equal(t, "US", r.Resolve(field, target), "target %q", target)
	}
	assert.Equal(t, "", r.Resolve(field, "Canada"))
}

func TestOptionResolver_NoOptions(t *testing.T) {
	r := NewOptionResolver()
	field := entity.ExtractedField{Selector: "#x", Kind: entity.FieldSelect}
	assert.Equal(t, "", r.Resolve(field, "United States"))
}

func TestOptionResolver_YesNoAlias(t *testing.T) {
	r := NewOptionResolver()
	field := entity.ExtractedField{
		Selector: "#auth",
		Kind:     entity.FieldRadio,
		Options: []entity.FieldOption{
			{Label: "Yes", Value: "yes"},
			{Label: "No", Value: "no"},
		},
	}
	assert.Equal(t, "yes", r.Resolve(field, "true"))
	assert.Equal(t, "no", r.Resolve(field, "N"))
}
