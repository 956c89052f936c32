package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wildfunctions/function_finder/pkg/engine"
	"github.com/wildfunctions/function_finder/pkg/expr"
	"github.com/wildfunctions/function_finder/pkg/strategy"
)

var (
	configPath  string
	verbose     bool
	metricsAddr string
	overrides   = engine.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "function_finder",
	Short: "Find an equation that fits a dataset by genetic programming",
	Long: `function_finder evolves arithmetic expression trees until one fits the
dependent values of a dataset, or the generation budget runs out.

The problem (variables, rows, targets, operators) comes from a YAML or JSON
config file; flags override individual settings.`,
	SilenceUsage: true,
	RunE:         runFind,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available strategies and functions",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "strategies: %s\n", strings.Join(strategy.Names(), ", "))
		fmt.Fprintf(out, "functions:  %s\n", strings.Join(expr.OpNames(), ", "))
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "config file (YAML or JSON); defaults to the 2x example")
	f.BoolVarP(&verbose, "verbose", "v", false, "log every generation")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	f.Int64Var(&overrides.Seed, "seed", overrides.Seed, "random seed (0 = random)")
	f.StringVar(&overrides.Strategy, "strategy", overrides.Strategy, "reproduction strategy ("+strings.Join(strategy.Names(), ", ")+")")
	f.IntVar(&overrides.PopulationSize, "population", overrides.PopulationSize, "population size (multiple of 4)")
	f.IntVar(&overrides.Generations, "generations", overrides.Generations, "generation budget per attempt")
	f.IntVar(&overrides.MaxDepth, "max-depth", overrides.MaxDepth, "max tree depth")
	f.IntVar(&overrides.TournamentSize, "tournament", overrides.TournamentSize, "tournament size (even, at least 4)")
	f.IntVar(&overrides.MutationChance, "mutation-chance", overrides.MutationChance, "1-in-N chance of mutating an offspring")
	f.IntVar(&overrides.MaxAttempts, "max-attempts", overrides.MaxAttempts, "restart with a fresh population until found, at most this many times")
	f.IntVar(&overrides.Workers, "workers", overrides.Workers, "number of scoring workers")
	f.DurationVar(&overrides.ErrorCacheTTL, "cache-ttl", overrides.ErrorCacheTTL, "memoize errors by expression for this long (0 = off)")
	f.StringVar(&overrides.Format, "format", overrides.Format, "output format (text, json)")
	f.BoolVar(&overrides.Plot, "plot", overrides.Plot, "write an HTML learning curve to --out-dir")
	f.IntVar(&overrides.PlotResolution, "plot-resolution", overrides.PlotResolution, "max points on the learning curve")
	f.BoolVar(&overrides.Latex, "latex", overrides.Latex, "write a LaTeX hall of fame to --out-dir")
	f.StringVar(&overrides.OutDir, "out-dir", overrides.OutDir, "output directory for generated files")
	f.IntVar(&overrides.ReportTop, "top", overrides.ReportTop, "individuals listed from the final population")

	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFind(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := engine.DefaultConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyOverrides(cmd, &cfg)

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.MaxAttempts > 1 {
		opts = append(opts, engine.WithProgress(os.Stderr))
	}
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, engine.WithMetrics(engine.NewMetrics(reg)))

		srv := serveMetrics(metricsAddr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	e, err := engine.New(cfg, opts...)
	if err != nil {
		return err
	}
	report, err := e.Run()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case "json":
		if err := engine.WriteJSONFinal(out, report); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
	default:
		engine.WriteTextFinal(out, report)
	}
	return nil
}

// applyOverrides copies every flag the user set onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *engine.Config) {
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("seed", func() { cfg.Seed = overrides.Seed })
	set("strategy", func() { cfg.Strategy = overrides.Strategy })
	set("population", func() { cfg.PopulationSize = overrides.PopulationSize })
	set("generations", func() { cfg.Generations = overrides.Generations })
	set("max-depth", func() { cfg.MaxDepth = overrides.MaxDepth })
	set("tournament", func() { cfg.TournamentSize = overrides.TournamentSize })
	set("mutation-chance", func() { cfg.MutationChance = overrides.MutationChance })
	set("max-attempts", func() { cfg.MaxAttempts = overrides.MaxAttempts })
	set("workers", func() { cfg.Workers = overrides.Workers })
	set("cache-ttl", func() { cfg.ErrorCacheTTL = overrides.ErrorCacheTTL })
	set("format", func() { cfg.Format = overrides.Format })
	set("plot", func() { cfg.Plot = overrides.Plot })
	set("plot-resolution", func() { cfg.PlotResolution = overrides.PlotResolution })
	set("latex", func() { cfg.Latex = overrides.Latex })
	set("out-dir", func() { cfg.OutDir = overrides.OutDir })
	set("top", func() { cfg.ReportTop = overrides.ReportTop })
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", addr))
	return srv
}
