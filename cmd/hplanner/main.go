package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentforge/hypothesis-planner/pkg/config"
	"github.com/agentforge/hypothesis-planner/pkg/llm"
	"github.com/agentforge/hypothesis-planner/pkg/memory"
	"github.com/agentforge/hypothesis-planner/pkg/observability"
	"github.com/agentforge/hypothesis-planner/pkg/search"
	"github.com/agentforge/hypothesis-planner/pkg/state"
	"github.com/agentforge/hypothesis-planner/pkg/workflow"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configPath  string
	interactive bool
	showVersion bool
)

func main() {
	root := &cobra.Command{
		Use:   "hplanner [query]",
		Short: "Research hypothesis planner",
		Long: `hplanner routes a research query through classification, literature
analysis, hypothesis generation, and experiment design, and prints a
synthesized answer. Past interactions persist to a memory log that
informs later runs.`,
		Args: cobra.ArbitraryArgs,
		RunE: run,
	}

	root.Flags().StringVarP(&configPath, "config", "c", "configs/default.yaml", "path to configuration file")
	root.Flags().BoolVarP(&interactive, "interactive", "i", false, "run an interactive query loop")
	root.Flags().BoolVar(&showVersion, "version", false, "show version information")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Printf("hplanner\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		return nil
	}

	cfg := config.LoadOrDefault(configPath)

	ctx := context.Background()
	telemetry, metrics, err := initObservability(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer shutdownObservability(ctx, telemetry)

	logger := observability.NewStructuredLogger("main")

	model := llm.NewInstrumentedClient(
		llm.NewClient(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Model, &llm.Options{
			Temperature: cfg.Model.Temperature,
			MaxTokens:   cfg.Model.MaxTokens,
			Timeout:     cfg.ModelTimeout(),
		}),
		telemetry, metrics,
	)

	store := memory.NewStore(cfg.Memory.Path, logger)
	searcher := search.NewArxivClient()
	graph := workflow.NewPlannerGraph(model, searcher, store, telemetry, logger, metrics)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	if interactive {
		return runInteractive(ctx, graph)
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("no query provided; pass one as an argument or use --interactive")
	}
	return runQuery(ctx, graph, query)
}

func initObservability(cfg *config.Config) (*observability.Telemetry, *observability.Metrics, error) {
	telConfig := &observability.TelemetryConfig{
		ServiceName:    "hypothesis-planner",
		ServiceVersion: Version,
		Environment:    getEnvironment(),
		OTLPEndpoint:   cfg.Observability.Tracing.Endpoint,
		PrometheusPort: cfg.Observability.Metrics.Port,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
		EnableTracing:  cfg.Observability.Tracing.Enabled,
		EnableMetrics:  cfg.Observability.Metrics.Enabled,
		EnableLogging:  true,
	}

	telemetry, err := observability.NewTelemetry(telConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := observability.NewMetrics(telemetry.Meter())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return telemetry, metrics, nil
}

func shutdownObservability(ctx context.Context, telemetry *observability.Telemetry) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}

func runInteractive(ctx context.Context, graph *workflow.PlannerGraph) error {
	color.Cyan("hplanner interactive mode. Type a query, or 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if query == "quit" || query == "exit" {
			return nil
		}

		if err := runQuery(ctx, graph, query); err != nil {
			if ctx.Err() != nil {
				return err
			}
			color.Red("run failed: %v", err)
		}
	}
}

func runQuery(ctx context.Context, graph *workflow.PlannerGraph, query string) error {
	started := time.Now()

	final, err := graph.Execute(ctx, query)
	if err != nil {
		return err
	}

	printReport(final, time.Since(started))
	return nil
}

func printReport(final state.Snapshot, elapsed time.Duration) {
	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	header.Println("\n=== Research Plan ===")
	fmt.Println(final.FinalResponse)

	label.Print("\nStages: ")
	fmt.Println(strings.Join(final.ActivatedStages, " -> "))

	if final.Novelty != nil {
		label.Print("Novelty: ")
		fmt.Printf("%d/10 (%s)\n", final.Novelty.Score, final.Novelty.Method)
	}
	if final.Feasibility != nil {
		label.Print("Feasibility: ")
		fmt.Printf("%s (%d/10)\n", final.Feasibility.Category, final.Feasibility.Score)
	}
	if final.Duration != nil {
		label.Print("Estimated duration: ")
		fmt.Println(final.Duration.Duration)
	}

	label.Print("Elapsed: ")
	fmt.Println(elapsed.Round(time.Millisecond))
}

func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}
