package workers

import (
	"time"

	"github.com/palmora/reading-gate/internal/logger"
)

const defaultSweepInterval = 5 * time.Minute

// janitor periodically removes expired records from the in-memory stores
// (rate-limit buckets, session records). Every store already treats expired
// entries as misses on read, so the janitor only reclaims memory; it never
// affects correctness.
type janitor struct {
	interval time.Duration
	sweepers []Sweeper

	logger *logger.Logger

	// stop terminates the sweep loop. Used by tests; the production janitor
	// runs for the process lifetime.
	stop chan struct{}
}

func newJanitor(interval time.Duration, sweepers []Sweeper, logger *logger.Logger) *janitor {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &janitor{
		interval: interval,
		sweepers: sweepers,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Run starts the sweep loop in its own goroutine and returns immediately.
func (j *janitor) Run() {
	j.logger.Info().Dur("interval", j.interval).Msg("janitor started")

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				j.sweep(now)
			case <-j.stop:
				return
			}
		}
	}()
}

func (j *janitor) sweep(now time.Time) {
	removed := 0
	for _, sweeper := range j.sweepers {
		removed += sweeper.Sweep(now)
	}

	if removed > 0 {
		j.logger.Debug().Int("removed", removed).Msg("swept expired records")
	}
}
