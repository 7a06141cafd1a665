package planner

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
)

// generativeMarkers are label phrases that flag a field as wanting
// free-form generated prose rather than a profile lookup.
var generativeMarkers = []string{
	"cover letter",
	"why do you want",
	"why this company",
	"why this role",
	"why are you interested",
	"tell us about",
	"about yourself",
	"motivation",
	"additional information",
	"additional comments",
	"anything else",
	"how did you hear",
	"what excites you",
	"describe your",
}

// longLabelThreshold: a textarea whose label is longer than this is
// assumed to be an open question even without a marker phrase.
const longLabelThreshold = 15

// IsGenerativeField reports whether the field's semantics call for
// generated prose instead of a structured profile value.
func IsGenerativeField(label string, kind entity.FieldKind) bool {
	norm := normalize(label)
	for _, marker := range generativeMarkers {
		if strings.Contains(norm, marker) {
			return true
		}
	}
	return kind == entity.FieldTextarea && len(strings.TrimSpace(label)) > longLabelThreshold
}

// ProseFiller asks the generation collaborator for content for every
// empty generative field. Individual failures skip the field silently.
type ProseFiller struct {
	generator output.ProseGeneratorPort
	logger    output.LoggerPort
}

func NewProseFiller(generator output.ProseGeneratorPort, logger output.LoggerPort) *ProseFiller {
	return &ProseFiller{generator: generator, logger: logger}
}

// Fill returns one setValue action per generative field the collaborator
// produced non-empty content for.
func (f *ProseFiller) Fill(ctx context.Context, snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext) []entity.AgentAction {
	if f.generator == nil {
		return nil
	}

	var actions []entity.AgentAction
	for _, field := range snapshot.Fields {
		if field.HasMeaningfulValue() || !IsGenerativeField(field.Label, field.Kind) {
			continue
		}

		content, err := f.generator.GenerateProse(ctx, field.Label, agentCtx)
		if err != nil {
			f.logger.Warn("Prose generation failed, skipping field",
				"label", field.Label, "error", err)
			continue
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		actions = append(actions, entity.AgentAction{
			ID:         uuid.NewString(),
			Type:       entity.ActionSetValue,
			Selector:   field.Selector,
			FieldLabel: field.Label,
			Value:      content,
			Reasoning:  generatedReasoning,
			Confidence: generatedConfidence,
		})
	}
	return actions
}
