package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"formpilot/internal/di"
	"formpilot/internal/domain/entity"
	"formpilot/internal/infrastructure/console"
	"formpilot/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()
	presenter := console.NewPresenter()

	formURL := envService.Get("FORM_URL")
	if formURL == "" {
		fmt.Println("\nEnter the form URL:")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatal("failed to read input: ", err)
		}
		formURL = strings.TrimSpace(line)
	}
	if formURL == "" {
		log.Fatal("no form URL given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	container, err := di.NewContainer(ctx, di.Config{
		OpenRouterAPIKey: envService.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:  envService.Get("OPENROUTER_MODEL_NAME"),
		BrowserHeadless:  envService.GetBool("BROWSER_HEADLESS", false),
		ProfilePath:      envService.GetWithDefault("PROFILE_PATH", "profile.yaml"),
		ResumePath:       envService.GetWithDefault("RESUME_PATH", "resume.txt"),
	})
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer container.Close()

	container.Logger.Info("Planning started", "url", formURL)

	if err := container.Browser.Open(ctx, formURL); err != nil {
		container.Logger.Error("Navigation failed", "error", err)
		presenter.ShowError("Could not open page", err)
		os.Exit(1)
	}

	if path := envService.Get("DEBUG_SCREENSHOT"); path != "" {
		if err := container.Browser.Screenshot(path); err != nil {
			container.Logger.Warn("Screenshot failed", "error", err)
		}
	}

	snapshot, err := container.Extractor.ExtractSnapshot(ctx)
	if err != nil {
		container.Logger.Error("Snapshot failed", "error", err)
		presenter.ShowError("Could not read the form", err)
		os.Exit(1)
	}
	presenter.ShowInfo("Found %d fields on %q", len(snapshot.Fields), snapshot.Title)

	agentCtx, err := container.Store.LoadContext(ctx)
	if err != nil {
		container.Logger.Error("Context load failed", "error", err)
		presenter.ShowError("Could not load profile", err)
		os.Exit(1)
	}

	plan := container.Planner.BuildActionPlan(ctx, snapshot, agentCtx)
	presenter.ShowPlan(plan)

	if !envService.GetBool("AUTO_APPLY", false) {
		presenter.ShowInfo("\nSet AUTO_APPLY=true to apply the plan.")
		return
	}

	clickNext := envService.GetBool("CLICK_NEXT", false)
	for _, action := range plan.Actions {
		if action.Type == entity.ActionClickNext && !clickNext {
			presenter.ShowInfo("Skipping %q (set CLICK_NEXT=true to allow it)", action.FieldLabel)
			continue
		}
		err := container.Executor.Apply(ctx, action)
		presenter.ShowApplied(action, err)
		if err != nil {
			container.Logger.Error("Action failed", "selector", action.Selector, "error", err)
		}
	}

	container.Logger.Info("Run finished", "actions", len(plan.Actions))
}
