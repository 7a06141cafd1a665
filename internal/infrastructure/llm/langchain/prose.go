package langchain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/openai"
	langchainprompts "github.com/tmc/langchaingo/prompts"

	"formpilot/internal/application/port/output"
	"formpilot/internal/domain/entity"
	"formpilot/internal/infrastructure/prompts"
)

var _ output.ProseGeneratorPort = (*ProseGenerator)(nil)

const maxProseHighlights = 5

// ProseGenerator produces free-form field content (cover letters, open
// questions) through an LLM chain, one field at a time.
type ProseGenerator struct {
	chain  chains.Chain
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

func New(cfg Config, logger output.LoggerPort) (*ProseGenerator, error) {
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create prose llm: %w", err)
	}

	template := langchainprompts.NewPromptTemplate(
		prompts.ProseTemplate,
		[]string{"Label", "Profile", "Highlights", "Job"},
	)

	return &ProseGenerator{
		chain:  chains.NewLLMChain(llm, template),
		logger: logger,
	}, nil
}

// GenerateProse writes the content for one open-ended field.
func (g *ProseGenerator) GenerateProse(ctx context.Context, label string, agentCtx *entity.AgentContext) (string, error) {
	out, err := chains.Call(ctx, g.chain, map[string]any{
		"Label":      label,
		"Profile":    renderProfile(agentCtx),
		"Highlights": renderHighlights(agentCtx),
		"Job":        renderJob(agentCtx),
	})
	if err != nil {
		return "", fmt.Errorf("prose chain call: %w", err)
	}

	text, _ := out["text"].(string)
	text = strings.TrimSpace(text)
	g.logger.Debug("Prose generated", "label", label, "length", len(text))
	return text, nil
}

func renderProfile(agentCtx *entity.AgentContext) string {
	if agentCtx == nil {
		return ""
	}
	keys := make([]string, 0, len(agentCtx.Profile))
	for k := range agentCtx.Profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if v := agentCtx.Profile.Get(k); v != "" {
			fmt.Fprintf(&sb, "%s: %s\n", k, v)
		}
	}
	return sb.String()
}

func renderHighlights(agentCtx *entity.AgentContext) string {
	if agentCtx == nil {
		return ""
	}
	var sb strings.Builder
	for i, h := range agentCtx.Resume.Highlights {
		if i >= maxProseHighlights {
			break
		}
		fmt.Fprintf(&sb, "- %s\n", h)
	}
	return sb.String()
}

func renderJob(agentCtx *entity.AgentContext) string {
	if agentCtx == nil || agentCtx.Job == nil {
		return ""
	}
	job := agentCtx.Job
	parts := make([]string, 0, 3)
	if job.Title != "" {
		parts = append(parts, job.Title)
	}
	if job.Company != "" {
		parts = append(parts, "at "+job.Company)
	}
	if job.Description != "" {
		parts = append(parts, "- "+job.Description)
	}
	return strings.Join(parts, " ")
}
