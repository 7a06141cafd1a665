package planner

import (
	"fmt"
	"sort"
	"strings"

	"formpilot/internal/domain/entity"
	"formpilot/internal/infrastructure/prompts"
)

const (
	maxPromptHighlights = 5
	maxJobSnippetLen    = 200
)

// PromptBuilder serializes snapshot and context into the system/user
// prompt pair for each generative attempt. It uses only information
// already present in its inputs.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildHybrid is attempt 1: the detailed prompt carrying profile,
// highlights, job context, pre-filled fields for review, and unfilled
// fields for completion.
func (b *PromptBuilder) BuildHybrid(snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext, resolved map[string]entity.AgentAction) (string, string) {
	var sb strings.Builder

	b.writeContext(&sb, agentCtx)

	var prefilled, unfilled []entity.ExtractedField
	for _, field := range snapshot.Fields {
		if field.HasMeaningfulValue() {
			continue
		}
		if _, ok := resolved[field.Selector]; ok {
			prefilled = append(prefilled, field)
		} else {
			unfilled = append(unfilled, field)
		}
	}

	if len(prefilled) > 0 {
		sb.WriteString("\nPRE-FILLED FIELDS (review; correct only if wrong):\n")
		for _, field := range prefilled {
			action := resolved[field.Selector]
			sb.WriteString(fieldLine(field, "pre-filled: "+action.Value))
		}
	}

	sb.WriteString("\nUNFILLED FIELDS:\n")
	for _, field := range unfilled {
		sb.WriteString(fieldLine(field, "unfilled"))
	}

	b.writeNavigation(&sb, snapshot)

	return prompts.HybridSystemPrompt, sb.String()
}

// BuildRetry is attempt 2: a simplified prompt restricted to fields that
// still have no resolved value, to recover from a malformed first
// response with less cognitive load.
func (b *PromptBuilder) BuildRetry(snapshot *entity.FormSnapshot, agentCtx *entity.AgentContext, resolved map[string]entity.AgentAction) (string, string) {
	var sb strings.Builder

	b.writeContext(&sb, agentCtx)

	sb.WriteString("\nFIELDS:\n")
	for _, field := range snapshot.Fields {
		if field.HasMeaningfulValue() {
			continue
		}
		if _, ok := resolved[field.Selector]; ok {
			continue
		}
		sb.WriteString(fieldLine(field, "unfilled"))
	}

	return prompts.RetrySystemPrompt, sb.String()
}

func (b *PromptBuilder) writeContext(sb *strings.Builder, agentCtx *entity.AgentContext) {
	sb.WriteString("PROFILE:\n")
	if agentCtx != nil {
		keys := make([]string, 0, len(agentCtx.Profile))
		for k := range agentCtx.Profile {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v := agentCtx.Profile.Get(k); v != "" {
				fmt.Fprintf(sb, "%s: %s\n", k, v)
			}
		}

		if len(agentCtx.Resume.Highlights) > 0 {
			sb.WriteString("\nRESUME HIGHLIGHTS:\n")
			for i, h := range agentCtx.Resume.Highlights {
				if i >= maxPromptHighlights {
					break
				}
				fmt.Fprintf(sb, "- %s\n", h)
			}
		}

		if job := agentCtx.Job; job != nil {
			fmt.Fprintf(sb, "\nJOB: %s", job.Title)
			if job.Company != "" {
				fmt.Fprintf(sb, " at %s", job.Company)
			}
			if snippet := oneLine(job.Description, maxJobSnippetLen); snippet != "" {
				fmt.Fprintf(sb, " | %s", snippet)
			}
			sb.WriteString("\n")
		}
	}
}

func (b *PromptBuilder) writeNavigation(sb *strings.Builder, snapshot *entity.FormSnapshot) {
	if len(snapshot.Navigation) == 0 {
		return
	}
	sb.WriteString("\nNAVIGATION (type clickNext, selectors only):\n")
	for _, nav := range snapshot.Navigation {
		fmt.Fprintf(sb, "%s | %s\n", nav.Selector, nav.Text)
	}
}

// fieldLine renders one field as
// "selector | label (name=\"...\") | hint | status".
func fieldLine(field entity.ExtractedField, status string) string {
	label := field.Label
	if label == "" {
		label = field.Placeholder
	}
	desc := label
	if field.Name != "" {
		desc = fmt.Sprintf("%s (name=%q)", label, field.Name)
	}
	line := fmt.Sprintf("%s | %s | %s | %s\n", field.Selector, desc, fieldHint(field), status)
	return line
}

func fieldHint(field entity.ExtractedField) string {
	switch field.Kind {
	case entity.FieldSelect, entity.FieldRadio:
		parts := make([]string, 0, len(field.Options))
		for _, opt := range field.Options {
			if opt.Label != "" && !strings.EqualFold(opt.Label, opt.Value) {
				parts = append(parts, fmt.Sprintf("%s (%s)", opt.Value, opt.Label))
			} else {
				parts = append(parts, opt.Value)
			}
		}
		return fmt.Sprintf("%s options: [%s]", field.Kind, strings.Join(parts, ", "))
	case entity.FieldCheckbox:
		return "checkbox (true/false)"
	default:
		hint := string(field.Kind)
		if field.Required {
			hint += ", required"
		}
		return hint
	}
}

func oneLine(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
