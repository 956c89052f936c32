package engine

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// SampleHistory thins a best-error history to about resolution points by
// keeping every step-th generation, step = max(1, len/resolution).
func SampleHistory(history []float64, resolution int) (gens []int, errs []float64, step int) {
	step = 1
	if resolution > 0 && len(history)/resolution > 1 {
		step = len(history) / resolution
	}
	for i := 0; i < len(history); i += step {
		gens = append(gens, i)
		errs = append(errs, history[i])
	}
	return gens, errs, step
}

// WriteLearningCurve renders the sampled history as an HTML line chart
// titled with the best expression.
func WriteLearningCurve(w io.Writer, history []float64, best string, resolution int) error {
	gens, errs, step := SampleHistory(history, resolution)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Function Finder Learning Curve",
			Subtitle: best,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: fmt.Sprintf("Samples every %d generations", step),
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Least error",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}))

	points := make([]opts.LineData, len(errs))
	for i, e := range errs {
		// Non-finite errors break the chart's JSON; "-" is a gap.
		if math.IsInf(e, 0) || math.IsNaN(e) {
			points[i] = opts.LineData{Value: "-"}
			continue
		}
		points[i] = opts.LineData{Value: e}
	}

	line.SetXAxis(gens).AddSeries("best error", points)
	return line.Render(w)
}
