package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"

	"formpilot/internal/application/port/output"
)

var _ output.GenerativePort = (*Adapter)(nil)

// engineState tracks the warm-singleton lifecycle of the completion
// client: created lazily, loaded once, reused across planning calls.
type engineState int

const (
	engineCold engineState = iota
	engineLoading
	engineReady
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
	}
}

// Adapter runs single-turn completions against an OpenAI-compatible
// endpoint. Engine creation failures are hard unavailability
// (output.ErrEngineUnavailable); request failures are transient.
type Adapter struct {
	cfg    Config
	logger output.LoggerPort

	mu     sync.Mutex
	state  engineState
	client *openai.Client
}

func New(cfg Config, logger output.LoggerPort) *Adapter {
	return &Adapter{cfg: cfg, logger: logger, state: engineCold}
}

// ensureEngine performs the single-writer lazy initialization. A failed
// load leaves the handle cold so the failure reason stays stable.
func (a *Adapter) ensureEngine() (*openai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == engineReady {
		return a.client, nil
	}

	a.state = engineLoading
	if a.cfg.APIKey == "" {
		a.state = engineCold
		return nil, fmt.Errorf("no API key configured: %w", output.ErrEngineUnavailable)
	}
	if a.cfg.Model == "" {
		a.state = engineCold
		return nil, fmt.Errorf("no model configured: %w", output.ErrEngineUnavailable)
	}

	clientCfg := openai.DefaultConfig(a.cfg.APIKey)
	if a.cfg.BaseURL != "" {
		clientCfg.BaseURL = a.cfg.BaseURL
	}
	a.client = openai.NewClientWithConfig(clientCfg)
	a.state = engineReady

	a.logger.Debug("Generative engine ready", "model", a.cfg.Model, "baseURL", clientCfg.BaseURL)
	return a.client, nil
}

// RunPrompt sends one system+user turn and returns the raw completion
// text. jsonSchema, when non-empty, is passed as a structured-output
// response format.
func (a *Adapter) RunPrompt(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	client, err := a.ensureEngine()
	if err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: a.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.0,
	}
	if jsonSchema != "" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "actions",
				Schema: json.RawMessage(jsonSchema),
				Strict: true,
			},
		}
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	a.logger.Debug("Completion received", "model", a.cfg.Model, "length", len(content))
	return content, nil
}
