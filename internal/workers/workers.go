package workers

import (
	"github.com/palmora/reading-gate/internal/config"
	"github.com/palmora/reading-gate/internal/logger"
)

type Workers struct {
	workers []Worker
}

// NewWorkers assembles the application's background workers: currently the
// janitor sweeping expired in-memory records out of the given sweepers.
func NewWorkers(cfg config.Workers, logger *logger.Logger, sweepers ...Sweeper) *Workers {
	return &Workers{
		workers: []Worker{
			newJanitor(cfg.SweepInterval, sweepers, logger),
		},
	}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
