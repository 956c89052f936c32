package population

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the finite errors of a generation. Individuals scored
// +Inf are only counted in Total; with no finite error the error fields
// are zero.
type Stats struct {
	Total    int     `json:"total"`
	Finite   int     `json:"finite"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	MeanSize float64 `json:"mean_size"` // mean node count over all individuals
}

// Stats returns error statistics for the current generation.
func (p *Population) Stats() Stats {
	s := Stats{Total: len(p.individuals)}
	errs := make([]float64, 0, len(p.individuals))
	sizes := make([]float64, 0, len(p.individuals))
	for _, ind := range p.individuals {
		sizes = append(sizes, float64(ind.Size()))
		if e := ind.Error(); !math.IsInf(e, 0) && !math.IsNaN(e) {
			errs = append(errs, e)
		}
	}
	s.Finite = len(errs)
	if len(sizes) > 0 {
		s.MeanSize = stat.Mean(sizes, nil)
	}
	if len(errs) == 0 {
		return s
	}

	s.Min, s.Max = errs[0], errs[0]
	for _, e := range errs[1:] {
		s.Min = math.Min(s.Min, e)
		s.Max = math.Max(s.Max, e)
	}
	if len(errs) == 1 {
		s.Mean = errs[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(errs, nil)
	return s
}
