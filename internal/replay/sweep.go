package replay

import (
	"context"
	"sync"

	"github.com/san-kum/whirl/internal/config"
)

// SweepJob is one tuning variant to replay a script under.
type SweepJob struct {
	Name   string
	Config *config.Config
}

// Sweep replays one script across several tuning configs in parallel.
// Each job gets its own runner and its own metric instances; runners
// are not safe for concurrent use.
type Sweep struct {
	key        string
	options    []string
	selected   int
	newMetrics func() []Metric
}

func NewSweep(key string, options []string, selected int, newMetrics func() []Metric) *Sweep {
	return &Sweep{
		key:        key,
		options:    options,
		selected:   selected,
		newMetrics: newMetrics,
	}
}

func (s *Sweep) Run(ctx context.Context, script Script, jobs []SweepJob, cfg Config) (map[string]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			runner := NewRunner(jobs[idx].Config, s.key, s.options, s.selected, nil)
			if s.newMetrics != nil {
				for _, m := range s.newMetrics() {
					runner.AddMetric(m)
				}
			}

			results[idx], errs[idx] = runner.Run(ctx, script, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	byName := make(map[string]*Result, len(jobs))
	for i, job := range jobs {
		byName[job.Name] = results[i]
	}
	return byName, nil
}
