package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/novahq/nova/internal/executor"
	"github.com/novahq/nova/internal/gateway"
	"github.com/novahq/nova/internal/governance"
	"github.com/novahq/nova/internal/observability"
	"github.com/novahq/nova/internal/planner"
	"github.com/novahq/nova/internal/runtime"
	"github.com/novahq/nova/internal/store"
	"github.com/novahq/nova/internal/tools"
	"github.com/novahq/nova/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file (json or yaml)")
	taskPath := flag.String("task", "", "run a single task from a json file and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	oneShot := *taskPath != ""
	if !oneShot {
		observability.PrintBanner()
		observability.InitializeTerminal()

		// Route all log output through the terminal mutex so it never
		// interrupts the dashboard's cursor save/restore sequence.
		log.SetOutput(observability.NewTermWriter())
	}

	// Initialize Tools
	registry := tools.NewRegistry()

	searchTool, err := tools.NewSearchTool()
	if err != nil {
		log.Printf("Warning: Failed to initialize search tool: %v", err)
	} else {
		registry.Register(searchTool)
	}

	registry.Register(tools.NewFilesystemTool(cfg.App.Workspace))
	registry.Register(tools.NewScraperTool())
	registry.Register(tools.NewShellTool())
	registry.Register(tools.NewBrowserTool())

	memory, err := store.NewMemoryStore(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	registry.Register(tools.NewScheduleTool(memory))

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: Block dangerous destructive commands
	_ = gov.DenyArguments(`rm\s+-rf`)
	_ = gov.DenyArguments(`mkfs`)
	_ = gov.DenyArguments(`shutdown`)
	_ = gov.DenyArguments(`reboot`)
	for _, name := range cfg.Security.AllowedTools {
		gov.AllowTool(name)
	}
	for _, name := range cfg.Security.DeniedTools {
		gov.DenyTool(name)
	}
	for _, pattern := range cfg.Security.DeniedArguments {
		if err := gov.DenyArguments(pattern); err != nil {
			log.Fatalf("Invalid denied_arguments pattern %q: %v", pattern, err)
		}
	}

	logger := observability.NewLogger()

	// Planner: LLM when a provider is enabled, static mapping otherwise.
	var taskPlanner runtime.Planner = planner.NewStaticPlanner()
	if pName, pCfg := cfg.GetDefaultProvider(); pName != "" {
		llm := buildModel(pName, pCfg)
		lp := planner.NewLLMPlanner(llm, registry)
		lp.Prompt = planner.NewPromptManager("./prompts").PlannerPrompt()
		taskPlanner = lp
	}

	exec := executor.New(executor.Config{
		MaxParallel:    cfg.Executor.MaxParallel,
		DefaultTimeout: time.Duration(cfg.Executor.DefaultTimeoutMS) * time.Millisecond,
	})

	rt := runtime.New(taskPlanner, gov, exec, registry, memory, logger)

	if oneShot {
		runOnce(rt, *taskPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier runtime.Messenger
	notifyID := ""

	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, rt)
		if err != nil {
			log.Fatal(err)
		}
		notifier = tg
		notifyID = tgCfg.NotifyID
		go func() {
			if err := tg.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] TELEGRAM GATEWAY ERROR: %v\033[0m", err)
				stop()
			}
		}()
		defer tg.Stop()
	}

	if dcCfg, ok := cfg.GetDiscordConfig(); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, rt)
		if err != nil {
			log.Fatal(err)
		}
		if notifier == nil {
			notifier = dc
			notifyID = dcCfg.NotifyID
		}
		if err := dc.Start(); err != nil {
			log.Fatal(err)
		}
		defer dc.Stop()
	}

	scheduler := runtime.NewScheduler(rt, memory, notifier, notifyID)
	go scheduler.Start(ctx)

	// Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
			}
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] CORE DE-INITIALIZED. GOODBYE.\033[0m")
}

// buildModel wires up the configured LLM provider.
func buildModel(name string, cfg config.ProviderConfig) llms.Model {
	switch name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			log.Fatal(err)
		}
		return llm
	default:
		log.Fatalf("Provider %s not yet implemented in main", name)
		return nil
	}
}

// runOnce executes a single task described by a json file and prints the
// result to stdout.
func runOnce(rt *runtime.Runtime, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	var task planner.Task
	if err := json.Unmarshal(data, &task); err != nil {
		log.Fatalf("failed to parse task file: %v", err)
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	result, err := rt.Execute(context.Background(), task)
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))

	if !result.Success {
		os.Exit(1)
	}
}
