package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TipFusion/internal/service/stream"
	"TipFusion/internal/usecase"
	pkgch "TipFusion/pkg/clickhouse"
	"TipFusion/pkg/config"
	xhttp "TipFusion/pkg/http"
	pkgkafka "TipFusion/pkg/kafka"
	applogger "TipFusion/pkg/logger"
	"TipFusion/pkg/queue"
)

const restoreTimeout = 15 * time.Second

// Deps is everything the application starts and stops. Optional
// components are nil when disabled in the config.
type Deps struct {
	Config     *config.Config
	Logger     *applogger.Logger
	HTTPServer *xhttp.Server
	Hub        *stream.Hub
	Bankroll   *usecase.BankrollService
	Catalog    *usecase.ModelCatalog
	Live       *usecase.LiveProcessor

	Collector    *usecase.LiveCollector
	Consumer     *pkgkafka.Consumer
	OddsHandler  *usecase.KafkaOddsHandler
	Settlements  *queue.RedisQueue
	LogPublisher *LogQueue
	Scheduler    *usecase.Scheduler
	Janitor      *usecase.Janitor

	// Closers are closed last, in order.
	Closers []io.Closer
	CH      *pkgch.Client
}

// LogQueue is the producer-only queue the log collector ships to.
type LogQueue struct {
	*queue.RedisQueue
}

// App encapsulates the entire application lifecycle.
type App struct {
	Deps
	log    *applogger.Logger
	cancel context.CancelFunc
}

func New(d Deps) *App {
	l := d.Logger
	if l == nil {
		l = applogger.Nop()
	}
	return &App{Deps: d, log: l}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}
	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Start restores persisted state, then starts every enabled component.
func (a *App) Start(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	rctx, cancel := context.WithTimeout(ctx, restoreTimeout)
	defer cancel()
	if err := a.Bankroll.Restore(rctx); err != nil {
		return err
	}
	if a.Catalog != nil {
		if err := a.Catalog.Restore(rctx); err != nil {
			// models can be re-registered over the API
			a.log.Warn("model catalog restore failed", applogger.Error(err))
		}
	}

	if a.LogPublisher != nil {
		if err := a.LogPublisher.Start(); err != nil {
			a.log.Warn("log publisher start failed", applogger.Error(err))
		}
	}

	if a.Settlements != nil {
		if err := a.Settlements.Start(); err != nil {
			return err
		}
	}

	if a.Consumer != nil && a.OddsHandler != nil {
		a.Consumer.RegisterHandler(a.OddsHandler)
		if err := a.Consumer.Start(); err != nil {
			return err
		}
	}

	if a.Collector != nil {
		if err := a.Collector.Start(ctx); err != nil {
			// the collector reconnects on its own once the feed is reachable
			a.log.Error("live collector start failed", applogger.Error(err))
		} else {
			a.log.Info("live collector started")
		}
	}

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}
	if a.Janitor != nil {
		a.Janitor.Start()
	}

	if err := a.HTTPServer.Start(); err != nil {
		return err
	}
	a.log.Info("tipfusion started", applogger.String("env", a.Config.Environment))
	return nil
}

// Shutdown stops the components in reverse start order and closes the
// infrastructure clients. It keeps going past failures and returns them joined.
func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	note := func(what string, err error) {
		if err != nil {
			a.log.Warn(what+" failed", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.HTTPServer != nil {
		note("http shutdown", a.HTTPServer.Stop(ctx))
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}
	if a.Janitor != nil {
		a.Janitor.Stop(ctx)
	}
	if a.Collector != nil {
		note("live collector shutdown", a.Collector.Shutdown(ctx))
	}
	if a.Consumer != nil {
		note("kafka consumer stop", a.Consumer.Stop(ctx))
	}
	if a.Settlements != nil {
		note("settlement queue stop", a.Settlements.Stop(ctx))
	}
	if a.Live != nil {
		a.Live.Close()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	a.log.RemoveCollector()
	if a.LogPublisher != nil {
		note("log publisher stop", a.LogPublisher.Stop(ctx))
	}
	for _, c := range a.Closers {
		note("close", c.Close())
	}
	if a.CH != nil {
		note("clickhouse close", a.CH.Close())
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
