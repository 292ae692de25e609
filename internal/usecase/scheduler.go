package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"TipFusion/internal/domain/models"
	"TipFusion/pkg/logger"
)

const (
	JobSingles = "singles"
	JobKombi   = "kombi"
	JobLive    = "live"
)

// Scheduler runs the daily strategy on cron: singles in the morning, the
// kombi at noon and the live monitor every minute in the afternoon.
type Scheduler struct {
	cron     *cron.Cron
	strategy *Strategy
	book     *EventBook
	log      *logger.Logger
	timeout  time.Duration
}

func NewScheduler(strategy *Strategy, book *EventBook, loc *time.Location, log *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		strategy: strategy,
		book:     book,
		log:      log,
		timeout:  time.Minute,
	}
}

// specParser matches the parser cron.WithSeconds installs.
var specParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Register adds the three jobs. Specs use the six-field seconds format. All
// specs are parsed before any job is added, so a bad spec registers nothing.
func (s *Scheduler) Register(singlesSpec, kombiSpec, liveSpec string) error {
	jobs := []struct {
		name string
		spec string
	}{
		{JobSingles, singlesSpec},
		{JobKombi, kombiSpec},
		{JobLive, liveSpec},
	}
	scheds := make([]cron.Schedule, len(jobs))
	for i, j := range jobs {
		sched, err := specParser.Parse(j.spec)
		if err != nil {
			return fmt.Errorf("register %s job: %w", j.name, err)
		}
		scheds[i] = sched
	}
	for i, j := range jobs {
		name := j.name
		s.cron.Schedule(scheds[i], cron.FuncJob(func() { s.run(name) }))
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", logger.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.RunNow(ctx, name); err != nil {
		s.log.Error("scheduled job failed", logger.String("job", name), logger.Error(err))
	}
}

// RunNow runs one job against the events currently in the book. Singles and
// kombi plan from pre-match events; the live job only re-plans the live
// picks and is skipped when no live events are known.
func (s *Scheduler) RunNow(ctx context.Context, name string) (*models.DailyPicks, error) {
	pre, live := s.split()
	switch name {
	case JobSingles, JobKombi:
		s.log.Info("running scheduled job", logger.String("job", name), logger.Int("events", len(pre)))
		return s.strategy.Generate(ctx, pre, nil)
	case JobLive:
		if len(live) == 0 {
			return nil, nil
		}
		s.log.Info("running scheduled job", logger.String("job", name), logger.Int("live_events", len(live)))
		return s.strategy.GenerateLive(ctx, live)
	default:
		return nil, fmt.Errorf("unknown job %q", name)
	}
}

func (s *Scheduler) split() (pre, live []models.Event) {
	for _, e := range s.book.Snapshot() {
		if e.Live {
			live = append(live, e)
		} else {
			pre = append(pre, e)
		}
	}
	return pre, live
}
