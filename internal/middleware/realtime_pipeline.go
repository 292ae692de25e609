package middleware

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"TipFusion/internal/domain/models"
	domrepo "TipFusion/internal/domain/repository"
	"TipFusion/internal/service/ratelimit"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, u *models.OddsUpdate) error
}

// RealtimePipeline sits between the odds feed and the live processor.
// It validates, throttles per event, optionally transforms, and buffers
// updates the processor failed on for a retry.
type RealtimePipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	limiter *ratelimit.Limiter
	maxRPS  float64
	bufSize int
	bufCh   chan *models.OddsUpdate
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	// optional format transform hook
	transform func(*models.OddsUpdate) *models.OddsUpdate
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS sets the max updates per second per event.
func WithMaxRPS(n float64) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a hook that rewrites updates before processing.
func WithTransform(fn func(*models.OddsUpdate) *models.OddsUpdate) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:    proc,
		metrics: metrics,
		maxRPS:  5,
		bufSize: 1000,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.OddsUpdate, p.bufSize)
	p.limiter = ratelimit.New(p.maxRPS, 1)
	return p
}

// Start launches background retries of buffered updates.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case u := <-p.bufCh:
				if u == nil {
					continue
				}
				if err := p.proc.Process(ctx, u); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					}
					select {
					case p.bufCh <- u:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background retries.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// Process validates, throttles and forwards an update, buffering it when the
// processor fails. Throttled updates are dropped without error.
func (p *RealtimePipeline) Process(ctx context.Context, u *models.OddsUpdate) error {
	start := time.Now()
	if err := validateUpdate(u); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		u = p.transform(u)
		if err := validateUpdate(u); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.limiter.Allow(u.EventID) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, u); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- u:
			p.metrics.RecordLatency("pipeline_buffer_depth", float64(len(p.bufCh)))
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// Buffered is the number of updates waiting for a retry.
func (p *RealtimePipeline) Buffered() int { return len(p.bufCh) }

func validateUpdate(u *models.OddsUpdate) error {
	if u == nil {
		return fmt.Errorf("update nil")
	}
	if u.EventID == "" {
		return fmt.Errorf("match_id empty")
	}
	for _, v := range []float64{u.Odds.Home, u.Odds.Draw, u.Odds.Away, u.Stakes.Home, u.Stakes.Away, u.MarketVolume} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("invalid odds, stakes or volume")
		}
	}
	return nil
}
