package engine

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/wildfunctions/function_finder/pkg/dataset"
	"github.com/wildfunctions/function_finder/pkg/expr"
	"github.com/wildfunctions/function_finder/pkg/population"
	"github.com/wildfunctions/function_finder/pkg/strategy"
)

// Engine runs the evolutionary search described by a Config.
type Engine struct {
	cfg      Config
	data     *dataset.Dataset
	grow     expr.GrowConfig
	strategy strategy.Strategy
	seed     int64
	rng      *rand.Rand
	cache    *cache.Cache

	logger    *slog.Logger
	progress  io.Writer
	metrics   *Metrics
	observers []population.Observer

	best *population.Population
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger handed to the engine and every population.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithProgress writes a one-line summary of every finished attempt to w.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) { e.progress = w }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithObserver registers a generation observer on every attempt.
func WithObserver(o population.Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// New validates cfg and builds the dataset and growth parameters.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	data, err := dataset.New(cfg.IndependentVariables, cfg.IndependentValues, cfg.DependentValues)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	ops, err := expr.ParseOps(cfg.FunctionSet)
	if err != nil {
		return nil, err
	}
	grow := expr.GrowConfig{
		Terminals:    data.Terminals(cfg.ValueSet),
		Functions:    ops,
		TerminalProb: cfg.TerminalProb,
		FunctionProb: cfg.FunctionProb,
		MaxDepth:     cfg.MaxDepth,
	}
	if err := grow.Validate(); err != nil {
		return nil, fmt.Errorf("grow config: %w", err)
	}
	s, err := strategy.Get(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	e := &Engine{
		cfg:      cfg,
		data:     data,
		grow:     grow,
		strategy: s,
		seed:     seed,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   slog.Default(),
	}
	if cfg.ErrorCacheTTL > 0 {
		e.cache = cache.New(cfg.ErrorCacheTTL, 2*cfg.ErrorCacheTTL)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Seed returns the seed the random source was built from.
func (e *Engine) Seed() int64 { return e.seed }

// Population returns the sorted final population of the best attempt, or
// nil before Run.
func (e *Engine) Population() *population.Population { return e.best }

// Run evolves fresh populations until one finds a solution or the attempt
// budget is spent, and reports on the best attempt. Every attempt draws
// from the same seeded source, so a run is reproducible from its seed.
func (e *Engine) Run() (Report, error) {
	runStart := time.Now()
	runID := uuid.NewString()
	attempts := e.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	e.logger.Info("starting run",
		slog.String("run_id", runID),
		slog.Int("population", e.cfg.PopulationSize),
		slog.Int("generations", e.cfg.Generations),
		slog.String("strategy", e.strategy.Name()),
		slog.Int("max_attempts", attempts),
		slog.Int("workers", e.cfg.Workers),
		slog.Int64("seed", e.seed))

	var hallOfFame []AttemptResult
	var evaluations int64
	var found bool
	e.best = nil

	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		pop, err := e.newPopulation()
		if err != nil {
			return Report{}, err
		}
		pop.Seed()
		found = pop.Evolve(e.cfg.Generations)
		pop.Sort()

		best := pop.Individuals()[0]
		ar := AttemptResult{
			Attempt:     attempt,
			Found:       found,
			Generations: pop.Generations(),
			BestError:   Float(best.Error()),
			Best:        best.String(),
			BestLaTeX:   best.LaTeX(),
			Evaluations: pop.Evaluations(),
			Elapsed:     time.Since(start),
			Timestamp:   time.Now().UTC(),
		}
		hallOfFame = append(hallOfFame, ar)
		if e.progress != nil {
			WriteAttemptSummary(e.progress, ar)
		}
		evaluations += pop.Evaluations()
		if e.metrics != nil {
			e.metrics.observeAttempt(found, pop.Evaluations())
		}

		e.logger.Info("attempt finished",
			slog.Int("attempt", attempt),
			slog.Bool("found", found),
			slog.Int("generations", ar.Generations),
			slog.Float64("best_error", best.Error()),
			slog.String("best", ar.Best))

		if e.best == nil || best.Error() < e.best.Individuals()[0].Error() {
			e.best = pop
		}
		if found {
			break
		}
	}

	report := e.report(runID, found, hallOfFame)
	report.Evaluations = evaluations
	report.Elapsed = time.Since(runStart)

	if e.cfg.Plot {
		path, err := e.writeChart(report)
		if err != nil {
			return report, err
		}
		report.ChartPath = path
	}
	if e.cfg.Latex {
		if err := e.writeLatex(report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (e *Engine) newPopulation() (*population.Population, error) {
	opts := []population.Option{
		population.WithLogger(e.logger),
		population.WithStrategy(e.strategy),
		population.WithMutationChance(e.cfg.MutationChance),
		population.WithWorkers(e.cfg.Workers),
	}
	if e.cache != nil {
		opts = append(opts, population.WithErrorCache(e.cache))
	}
	if e.metrics != nil {
		opts = append(opts, population.WithObserver(e.metrics))
	}
	for _, o := range e.observers {
		opts = append(opts, population.WithObserver(o))
	}
	return population.New(e.cfg.PopulationSize, e.cfg.TournamentSize, e.data, e.grow, e.rng, opts...)
}

// report summarizes the best attempt's sorted population.
func (e *Engine) report(runID string, found bool, hallOfFame []AttemptResult) Report {
	inds := e.best.Individuals()
	best := inds[0]

	history := e.best.History()
	r := Report{
		RunID:      runID,
		Seed:       e.seed,
		Config:     e.cfg,
		Found:      found,
		Attempts:   hallOfFame,
		BestError:  Float(best.Error()),
		Best:       best.String(),
		BestLaTeX:  best.LaTeX(),
		Simplified: expr.Simplify(best.Root).String(),
		Complexity: best.Complexity(),
		History:    make([]Float, len(history)),
		Stats:      e.best.Stats(),
	}
	for i, h := range history {
		r.History[i] = Float(h)
	}

	top := e.cfg.ReportTop
	if top > len(inds) {
		top = len(inds)
	}
	for i, ind := range inds[:top] {
		r.Top = append(r.Top, Ranked{
			Rank:       i + 1,
			Error:      Float(ind.Error()),
			Expression: ind.String(),
			Size:       ind.Size(),
		})
	}
	return r
}

func (e *Engine) writeChart(r Report) (string, error) {
	if err := os.MkdirAll(e.cfg.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(e.cfg.OutDir, fmt.Sprintf("learning_curve_%s.html", r.RunID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating chart: %w", err)
	}
	defer f.Close()

	history := make([]float64, len(r.History))
	for i, h := range r.History {
		history[i] = float64(h)
	}
	if err := WriteLearningCurve(f, history, r.Best, e.cfg.PlotResolution); err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}
	e.logger.Info("wrote learning curve", slog.String("path", path))
	return path, nil
}

// writeLatex writes the hall of fame as a LaTeX document into the output
// directory and compiles it when pdflatex is on the path.
func (e *Engine) writeLatex(r Report) error {
	absOut, err := filepath.Abs(e.cfg.OutDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absOut, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	base := "hall_of_fame_" + r.RunID
	tex := filepath.Join(absOut, base+".tex")
	f, err := os.Create(tex)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tex, err)
	}
	WriteHallOfFameLatex(f, r)
	if err := f.Close(); err != nil {
		return err
	}
	e.logger.Info("wrote hall of fame", slog.String("path", tex))

	pdflatex, err := exec.LookPath("pdflatex")
	if err != nil {
		return nil
	}
	cmd := exec.Command(pdflatex, "-interaction=nonstopmode", base+".tex")
	cmd.Dir = absOut
	if out, err := cmd.CombinedOutput(); err != nil {
		e.logger.Warn("pdflatex failed", slog.String("error", err.Error()), slog.String("output", string(out)))
	}
	for _, ext := range []string{".aux", ".log"} {
		os.Remove(filepath.Join(absOut, base+ext))
	}
	return nil
}
