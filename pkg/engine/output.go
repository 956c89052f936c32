package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wildfunctions/function_finder/pkg/population"
)

// Float is a float64 that survives JSON encoding when it is not finite;
// +Inf, -Inf and NaN are written as strings.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid float %q: %w", s, err)
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', 6, 64)
}

// AttemptResult summarizes one restart attempt.
type AttemptResult struct {
	Attempt     int           `json:"attempt"`
	Found       bool          `json:"found"`
	Generations int           `json:"generations"`
	BestError   Float         `json:"best_error"`
	Best        string        `json:"best"`
	BestLaTeX   string        `json:"best_latex"`
	Evaluations int64         `json:"evaluations"`
	Elapsed     time.Duration `json:"elapsed"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Ranked is one entry of the sorted final population.
type Ranked struct {
	Rank       int    `json:"rank"`
	Error      Float  `json:"error"`
	Expression string `json:"expression"`
	Size       int    `json:"size"`
}

// Report summarizes the entire run. Best* and History describe the best
// attempt.
type Report struct {
	RunID       string           `json:"run_id"`
	Seed        int64            `json:"seed"`
	Config      Config           `json:"config"`
	Found       bool             `json:"found"`
	Attempts    []AttemptResult  `json:"attempts"`
	BestError   Float            `json:"best_error"`
	Best        string           `json:"best"`
	BestLaTeX   string           `json:"best_latex"`
	Simplified  string           `json:"simplified"`
	Complexity  float64          `json:"complexity"`
	History     []Float          `json:"history"`
	Top         []Ranked         `json:"top,omitempty"`
	Stats       population.Stats `json:"stats"`
	Evaluations int64            `json:"evaluations"`
	Elapsed     time.Duration    `json:"elapsed"`
	ChartPath   string           `json:"chart_path,omitempty"`
}

// sortByError returns a copy of attempts sorted by best error ascending.
func sortByError(attempts []AttemptResult) []AttemptResult {
	sorted := make([]AttemptResult, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BestError < sorted[j].BestError
	})
	return sorted
}

// WriteAttemptSummary writes a single attempt result.
func WriteAttemptSummary(w io.Writer, a AttemptResult) {
	status := "not found"
	if a.Found {
		status = "found"
	}
	fmt.Fprintf(w, "Attempt %d: %s after %d generations, error %s, %s evaluations | %s\n",
		a.Attempt, status, a.Generations, a.BestError, humanize.Comma(a.Evaluations), a.Best)
}

// WriteHallOfFame writes the attempts sorted by best error.
func WriteHallOfFame(w io.Writer, attempts []AttemptResult) {
	fmt.Fprintln(w, "\n--- Hall of Fame ---")
	for i, a := range sortByError(attempts) {
		fmt.Fprintf(w, "  #%d: [attempt %d, %d gens] %12s | %s\n",
			i+1, a.Attempt, a.Generations, a.BestError, a.Best)
	}
}

// WriteTextFinal writes the final report in human-readable format.
func WriteTextFinal(w io.Writer, r Report) {
	if len(r.Attempts) > 1 {
		WriteHallOfFame(w, r.Attempts)
	}
	if len(r.Top) > 0 {
		fmt.Fprintln(w, "\n--- Final Population ---")
		for _, t := range r.Top {
			fmt.Fprintf(w, "  #%d: %12s | size %3d | %s\n", t.Rank, t.Error, t.Size, t.Expression)
		}
	}

	verdict := "No ideal individual was found."
	if r.Found {
		verdict = "An ideal individual was found."
	}
	fmt.Fprintln(w, "\n========== FINAL RESULT ==========")
	fmt.Fprintln(w, verdict)
	fmt.Fprintf(w, "Run:         %s (seed %d)\n", r.RunID, r.Seed)
	fmt.Fprintf(w, "Attempts:    %d\n", len(r.Attempts))
	fmt.Fprintf(w, "Generations: %d\n", len(r.History))
	fmt.Fprintf(w, "Error:       %s\n", r.BestError)
	fmt.Fprintf(w, "Best:        %s\n", r.Best)
	fmt.Fprintf(w, "Simplified:  %s\n", r.Simplified)
	fmt.Fprintf(w, "LaTeX:       %s\n", strings.TrimSpace(r.BestLaTeX))
	fmt.Fprintf(w, "Complexity:  %.1f\n", r.Complexity)
	fmt.Fprintf(w, "Evaluations: %s in %s\n", humanize.Comma(r.Evaluations), r.Elapsed.Round(time.Millisecond))
	if r.ChartPath != "" {
		fmt.Fprintf(w, "Chart:       %s\n", r.ChartPath)
	}
	fmt.Fprintln(w, "==================================")
}

// WriteJSONFinal writes the final report as JSON.
func WriteJSONFinal(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// latexEscape escapes underscores for LaTeX text mode.
func latexEscape(s string) string {
	return strings.ReplaceAll(s, "_", `\_`)
}

// WriteHallOfFameLatex writes a compilable LaTeX document of the attempts.
func WriteHallOfFameLatex(w io.Writer, r Report) {
	cfg := r.Config

	fmt.Fprintln(w, `\documentclass{article}`)
	fmt.Fprintln(w, `\usepackage{amsmath}`)
	fmt.Fprintln(w, `\usepackage{geometry}`)
	fmt.Fprintln(w, `\geometry{margin=1in}`)
	fmt.Fprintf(w, "\\title{Hall of Fame --- Run \\texttt{%s}}\n", latexEscape(r.RunID))
	fmt.Fprintln(w, `\date{\today}`)
	fmt.Fprintln(w, `\begin{document}`)
	fmt.Fprintln(w, `\maketitle`)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "\\noindent Variables: \\texttt{%s}, Functions: \\texttt{%s}, Strategy: \\texttt{%s}\\\\\n",
		latexEscape(strings.Join(cfg.IndependentVariables, ", ")),
		latexEscape(strings.Join(cfg.FunctionSet, ", ")),
		latexEscape(cfg.Strategy))
	fmt.Fprintf(w, "Population: %d, Generations: %d, Tournament: %d, Max depth: %d, Seed: %d\n\n",
		cfg.PopulationSize, cfg.Generations, cfg.TournamentSize, cfg.MaxDepth, r.Seed)

	for i, a := range sortByError(r.Attempts) {
		fmt.Fprintf(w, "\\subsection*{\\#%d --- error %s (attempt %d, %d generations, %s)}\n",
			i+1, a.BestError, a.Attempt, a.Generations,
			a.Timestamp.Format("2006-01-02 15:04:05 UTC"))
		fmt.Fprintln(w, `\[`)
		fmt.Fprintf(w, "  %s\n", a.BestLaTeX)
		fmt.Fprintln(w, `\]`)
	}

	fmt.Fprintln(w, `\end{document}`)
}
