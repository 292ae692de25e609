package usecase

import (
	"context"
	"time"

	"TipFusion/internal/domain/models"
	drepo "TipFusion/internal/domain/repository"
	mid "TipFusion/internal/middleware"
	"TipFusion/pkg/logger"
)

// LiveCollector reads the live odds stream and feeds the processor.
type LiveCollector struct {
	stream  drepo.OddsStream
	proc    *LiveProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
	log     *logger.Logger
	retry   time.Duration
}

func NewLiveCollector(stream drepo.OddsStream, proc *LiveProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline, log *logger.Logger) *LiveCollector {
	if log == nil {
		log = logger.Nop()
	}
	return &LiveCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe, log: log, retry: 5 * time.Second}
}

func (c *LiveCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *LiveCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.run(ctx)
	return nil
}

// run consumes until ctx ends, reconnecting whenever the stream breaks.
func (c *LiveCollector) run(ctx context.Context) {
	for {
		upCh, errCh := c.stream.Read(ctx)
		c.consume(ctx, upCh, errCh)
		if ctx.Err() != nil {
			return
		}
		for {
			err := c.stream.Reconnect(ctx)
			if err == nil {
				break
			}
			c.metrics.RecordError("stream_reconnect")
			c.log.Warn("odds feed reconnect failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retry):
			}
		}
	}
}

// consume returns when the stream reports an error or closes.
func (c *LiveCollector) consume(ctx context.Context, upCh <-chan *models.OddsUpdate, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("odds feed error", logger.Error(err))
				return
			}
		case u, ok := <-upCh:
			if !ok {
				return
			}
			if u == nil {
				continue
			}
			var err error
			if c.pipe != nil {
				err = c.pipe.Process(ctx, u)
			} else {
				err = c.proc.Process(ctx, u)
			}
			if err != nil {
				c.log.Debug("live update failed", logger.String("event_id", u.EventID), logger.Error(err))
			}
		}
	}
}

func (c *LiveCollector) Processor() *LiveProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *LiveCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
