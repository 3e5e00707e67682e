package pool

import (
	"time"

	"github.com/rs/zerolog"
)

// Progress receives progress updates from worker 0.
// Implementations are only ever called from one goroutine.
type Progress interface {
	Start(total int)
	Update(index int)
	Finish()
}

// LogProgress logs roughly every tenth of the run.
type LogProgress struct {
	logger zerolog.Logger
	total  int
	step   int
	next   int
	start  time.Time
}

// NewLogProgress creates a LogProgress writing to logger.
//
//nolint:gocritic // Logger passed by value for constructor simplicity
func NewLogProgress(logger zerolog.Logger) *LogProgress {
	return &LogProgress{logger: logger}
}

func (lp *LogProgress) Start(total int) {
	lp.total = total
	lp.step = max(total/10, 1)
	lp.next = 0
	lp.start = time.Now()
}

func (lp *LogProgress) Update(index int) {
	if index < lp.next {
		return
	}
	lp.next = index + lp.step
	pct := 0.0
	if lp.total > 0 {
		pct = 100 * float64(index) / float64(lp.total)
	}
	lp.logger.Info().
		Int("index", index).
		Int("total", lp.total).
		Float64("percent", pct).
		Msg("Scoring progress")
}

func (lp *LogProgress) Finish() {
	lp.logger.Info().
		Int("total", lp.total).
		Dur("elapsed", time.Since(lp.start)).
		Msg("Scoring finished")
}
