package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"formpilot/internal/application/port/input"
	"formpilot/internal/application/port/output"
	"formpilot/internal/infrastructure/browser/rodwrapper"
	"formpilot/internal/infrastructure/llm/langchain"
	"formpilot/internal/infrastructure/llm/openrouter"
	"formpilot/internal/infrastructure/logger"
	"formpilot/internal/infrastructure/storage"
	"formpilot/internal/usecase/planner"
)

type Container struct {
	Browser   *rodwrapper.Browser
	Extractor output.SnapshotPort
	Executor  output.ActionExecutorPort
	Store     output.ContextStorePort
	Planner   input.ActionPlanner
	Logger    output.LoggerPort
}

type Config struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	BrowserHeadless  bool
	ProfilePath      string
	ResumePath       string
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.New("formpilot")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	browserCfg := rodwrapper.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browser, err := rodwrapper.NewBrowser(ctx, browserCfg)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	llm := openrouter.New(openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel), log)

	// prose generation is optional; the planner degrades without it
	var proseGen output.ProseGeneratorPort
	prose, err := langchain.New(langchain.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: "https://openrouter.ai/api/v1",
	}, log)
	if err != nil {
		log.Warn("Prose generator unavailable", "error", err)
	} else {
		proseGen = prose
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return &Container{
		Browser:   browser,
		Extractor: rodwrapper.NewExtractor(browser, log),
		Executor:  rodwrapper.NewExecutor(browser, log),
		Store:     storage.New(cfg.ProfilePath, cfg.ResumePath, log),
		Planner:   planner.New(llm, proseGen, log, rng),
		Logger:    log,
	}, nil
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
