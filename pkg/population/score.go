package population

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wildfunctions/function_finder/pkg/expr"
	"github.com/wildfunctions/function_finder/pkg/individual"
)

// Score recomputes the error of every individual. An individual present
// several times in the generation is scored once.
func (p *Population) Score() {
	unique := make([]*individual.Individual, 0, len(p.individuals))
	seen := make(map[*individual.Individual]bool, len(p.individuals))
	for _, ind := range p.individuals {
		if !seen[ind] {
			seen[ind] = true
			unique = append(unique, ind)
		}
	}

	workers := p.workers
	if workers > len(unique) {
		workers = len(unique)
	}
	if workers < 2 {
		b := p.data.Bindings()
		for _, ind := range unique {
			p.score(ind, b)
		}
		return
	}

	// One contiguous chunk per worker, each with its own bindings.
	var g errgroup.Group
	chunk := (len(unique) + workers - 1) / workers
	for lo := 0; lo < len(unique); lo += chunk {
		part := unique[lo:min(lo+chunk, len(unique))]
		g.Go(func() error {
			b := p.data.Bindings()
			for _, ind := range part {
				p.score(ind, b)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// score evaluates ind with bindings b, consulting the error cache first.
func (p *Population) score(ind *individual.Individual, b *expr.Bindings) {
	if p.cache == nil {
		ind.EvaluateError(b)
		atomic.AddInt64(&p.evaluations, 1)
		return
	}
	key := ind.String()
	if v, ok := p.cache.Get(key); ok {
		ind.SetError(v.(float64))
		return
	}
	e := ind.EvaluateError(b)
	atomic.AddInt64(&p.evaluations, 1)
	p.cache.SetDefault(key, e)
}
