package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CryptoBooster/internal/domain/models"
	domrepo "CryptoBooster/internal/domain/repository"
	"CryptoBooster/internal/usecase"
	pkgch "CryptoBooster/pkg/clickhouse"
	"CryptoBooster/pkg/config"
	xhttp "CryptoBooster/pkg/http"
	pkgkafka "CryptoBooster/pkg/kafka"
	applogger "CryptoBooster/pkg/logger"
	"CryptoBooster/pkg/queue"
)

// App encapsulates the application lifecycle: position store, price stream
// collector, Kafka event plumbing, background chart refresh, and the HTTP
// server. Every infrastructure component is optional; a nil field is simply
// skipped.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	store     *usecase.PositionStore
	collector *usecase.TickCollector
	consumer  *pkgkafka.Consumer
	eventsKH  pkgkafka.MessageHandler
	publisher domrepo.Publisher
	archive   domrepo.PositionArchive
	chClient  *pkgch.Client
	jobQueue  *queue.RedisQueue
	handler   xhttp.Handler

	httpServer  *xhttp.Server
	unsubEvents func()
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	store *usecase.PositionStore,
	collector *usecase.TickCollector,
	consumer *pkgkafka.Consumer,
	eventsKH pkgkafka.MessageHandler,
	publisher domrepo.Publisher,
	archive domrepo.PositionArchive,
	chClient *pkgch.Client,
	jobQueue *queue.RedisQueue,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    lgr,
		store:     store,
		collector: collector,
		consumer:  consumer,
		eventsKH:  eventsKH,
		publisher: publisher,
		archive:   archive,
		chClient:  chClient,
		jobQueue:  jobQueue,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := a.logger

	// Archive schema + initial user context. The store reloads the archived
	// position set asynchronously.
	if a.archive != nil {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := a.archive.Init(initCtx); err != nil {
			initCancel()
			return err
		}
		initCancel()
	}
	a.store.SetCurrentUser(ctx, a.cfg.User.DefaultID)

	// Forward store mutations to Kafka. Publishing happens off the mutation
	// path so a slow broker never blocks the store.
	if a.publisher != nil {
		a.unsubEvents = a.store.SubscribeEvents(func(ev models.PositionEvent) {
			go func() {
				pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer pubCancel()
				if err := a.publisher.Publish(pubCtx, &ev); err != nil {
					l.Warn("position event publish failed", applogger.Error(err))
				}
			}()
		})
		l.Info("position events wired to kafka", applogger.String("topic", a.cfg.Kafka.Topic))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("tick collector error", applogger.Error(err))
			}
		}()
		l.Info("tick collector started", applogger.Strings("symbols", a.cfg.PriceStream.Symbols))
	}

	if a.consumer != nil && a.eventsKH != nil {
		a.consumer.RegisterHandler(a.eventsKH)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.eventsKH.Topic()))
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Start(); err != nil {
			l.Error("job queue start error", applogger.Error(err))
		} else {
			go a.chartRefreshLoop(ctx)
			l.Info("chart refresh queue started",
				applogger.Int("coins", len(a.cfg.Chart.Coins)),
				applogger.Duration("interval", a.cfg.Chart.RefreshInterval))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// chartRefreshLoop enqueues a refresh job per configured asset on a fixed
// interval so cached bundles stay warm.
func (a *App) chartRefreshLoop(ctx context.Context) {
	interval := a.cfg.Chart.RefreshInterval
	if interval <= 0 || len(a.cfg.Chart.Coins) == 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, coin := range a.cfg.Chart.Coins {
				payload := usecase.ChartRefreshPayload{CoinID: coin}
				if err := a.jobQueue.Enqueue(ctx, usecase.ChartRefreshType, payload); err != nil {
					a.logger.Warn("chart refresh enqueue failed",
						applogger.String("coin", coin), applogger.Error(err))
				}
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger
	l.Info("shutting down...")

	if a.unsubEvents != nil {
		a.unsubEvents()
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("tick collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
