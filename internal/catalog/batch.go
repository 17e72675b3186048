package catalog

import (
	"context"
	"sync"

	"github.com/san-kum/bondgraph/internal/bondgraph"
)

// Result is the outcome of assembling one catalog model.
type Result struct {
	Name   string
	System *bondgraph.System
	Err    error
}

// AssembleAll builds and assembles each named model on its own goroutine.
// Every model is built fresh, so no model is shared between goroutines.
// Results keep the order of names; per-model failures are reported in
// Result.Err and only cancellation is returned as an error.
func (r *Registry) AssembleAll(ctx context.Context, names []string) ([]Result, error) {
	results := make([]Result, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()

			res := &results[idx]
			res.Name = name
			if err := ctx.Err(); err != nil {
				res.Err = err
				return
			}
			m, err := r.GetModel(name)
			if err != nil {
				res.Err = err
				return
			}
			res.System, res.Err = m.SystemRep()
		}(i, name)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
