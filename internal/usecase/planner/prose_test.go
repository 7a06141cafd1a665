package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formpilot/internal/domain/entity"
)

func TestIsGenerativeField(t *testing.T) {
	tests := []struct {
		label string
		kind  entity.FieldKind
		want  bool
	}{
		{"Cover Letter", entity.FieldTextarea, true},
		{"Why do you want to join us?", entity.FieldText, true},
		{"Tell us about a project you are proud of", entity.FieldTextarea, true},
		{"How did you hear about this role?", entity.FieldText, true},
		{"What is your notice period in weeks?", entity.FieldTextarea, true},
		{"Notes", entity.FieldTextarea, false},
		{"First Name", entity.FieldText, false},
		{"Email Address", entity.FieldEmail, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsGenerativeField(tt.label, tt.kind), "label %q", tt.label)
	}
}

type fakeProseGenerator struct {
	content string
	err     error
	calls   []string
}

func (g *fakeProseGenerator) GenerateProse(_ context.Context, label string, _ *entity.AgentContext) (string, error) {
	g.calls = append(g.calls, label)
	return g.content, g.err
}

func TestProseFiller_FillsGenerativeFields(t *testing.T) {
	gen := &fakeProseGenerator{content: "  I have long admired your work.  "}
	filler := NewProseFiller(gen, nopLogger{})

	snapshot := &entity.FormSnapshot{Fields: []entity.ExtractedField{
		{Selector: "#cover", Kind: entity.FieldTextarea, Label: "Cover Letter"},
		{Selector: "#email", Kind: entity.FieldEmail, Label: "Email"},
		{Selector: "#filled", Kind: entity.FieldTextarea, Label: "Cover Letter", Value: "done"},
	}}

	actions := filler.Fill(context.Background(), snapshot, nil)
	require.Len(t, actions, 1)
	assert.Equal(t, "#cover", actions[0].Selector)
	assert.Equal(t, entity.ActionSetValue, actions[0].Type)
	assert.Equal(t, "I have long admired your work.", actions[0].Value)
	assert.Equal(t, generatedConfidence, actions[0].Confidence)
	assert.Equal(t, []string{"Cover Letter"}, gen.calls)
}

func TestProseFiller_SkipsFailedFields(t *testing.T) {
	gen := &fakeProseGenerator{err: errors.New("model busy")}
	filler := NewProseFiller(gen, nopLogger{})

	snapshot := &entity.FormSnapshot{Fields: []entity.ExtractedField{
		{Selector: "#cover", Kind: entity.FieldTextarea, Label: "Cover Letter"},
	}}
	assert.Empty(t, filler.Fill(context.Background(), snapshot, nil))
}

func TestProseFiller_NilGenerator(t *testing.T) {
	filler := NewProseFiller(nil, nopLogger{})
	snapshot := &entity.FormSnapshot{Fields: []entity.ExtractedField{
		{Selector: "#cover", Kind: entity.FieldTextarea, Label: "Cover Letter"},
	}}
	assert.Nil(t, filler.Fill(context.Background(), snapshot, nil))
}
