package simulator

import (
	"sync"

	"BrownianScope/internal/model"
)

// Runner generates one forecast path per seed over a shared horizon.
type Runner struct {
	Horizon        Horizon
	LookbackOffset int
	Parallel       bool
}

// Run returns the paths in the order of seeds. Each path owns its own random
// source and output slices, so Parallel does not change the results.
func (r Runner) Run(params model.Parameters, seeds []int64) ([]model.ForecastPath, error) {
	if r.Horizon.Steps <= 0 || !(r.Horizon.Years > 0) {
		return nil, &InvalidHorizonError{Steps: r.Horizon.Steps, Years: r.Horizon.Years}
	}

	paths := make([]model.ForecastPath, len(seeds))
	if !r.Parallel {
		for i, seed := range seeds {
			p, err := GenerateSpan(seed, params, r.Horizon, r.LookbackOffset)
			if err != nil {
				return nil, err
			}
			paths[i] = p
		}
		return paths, nil
	}

	errs := make([]error, len(seeds))
	var wg sync.WaitGroup
	wg.Add(len(seeds))
	for i, seed := range seeds {
		go func(i int, seed int64) {
			defer wg.Done()
			paths[i], errs[i] = GenerateSpan(seed, params, r.Horizon, r.LookbackOffset)
		}(i, seed)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}
