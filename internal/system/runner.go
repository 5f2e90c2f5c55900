package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. A panic inside one
// system is caught and logged with its phase; the remaining phases of the
// tick still run, so a single bad entity cannot stop the world.
type Runner struct {
	systems []System
	sorted  bool
	log     *zap.Logger
}

func NewRunner(log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(now time.Time, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.run(s, now, dt)
	}
}

func (r *Runner) run(s System, now time.Time, dt time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("tick 階段發生未處理錯誤，略過本次",
				zap.Int("phase", int(s.Phase())),
				zap.Any("panic", rec),
			)
		}
	}()
	s.Update(now, dt)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
