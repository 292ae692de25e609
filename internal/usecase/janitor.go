package usecase

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"TipFusion/pkg/logger"
)

// Sweeper drops expired entries from an in-process cache.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps the in-process TTL caches. Expired entries are
// otherwise only dropped when read again.
type Janitor struct {
	cron     *cron.Cron
	sweepers map[string]Sweeper
	log      *logger.Logger
}

// NewJanitor schedules a sweep of every named cache on spec, in the six-field
// seconds format or a descriptor such as "@every 10m". Nil sweepers are skipped.
func NewJanitor(spec string, sweepers map[string]Sweeper, log *logger.Logger) (*Janitor, error) {
	if log == nil {
		log = logger.Nop()
	}
	j := &Janitor{
		cron:     cron.New(cron.WithSeconds()),
		sweepers: make(map[string]Sweeper, len(sweepers)),
		log:      log,
	}
	for name, s := range sweepers {
		if s != nil {
			j.sweepers[name] = s
		}
	}
	sched, err := specParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("cache sweep spec: %w", err)
	}
	j.cron.Schedule(sched, cron.FuncJob(func() { j.Sweep() }))
	return j, nil
}

// Sweep runs one pass over all caches and returns the number of entries removed.
func (j *Janitor) Sweep() int {
	total := 0
	for name, s := range j.sweepers {
		n := s.Sweep()
		if n > 0 {
			j.log.Debug("cache swept", logger.String("cache", name), logger.Int("removed", n))
		}
		total += n
	}
	return total
}

func (j *Janitor) Start() { j.cron.Start() }

func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
