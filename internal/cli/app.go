package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Swind/go-executor/core"
	"github.com/Swind/go-executor/internal/config"
	obs "github.com/Swind/go-executor/observability/prometheus"
	zlog "github.com/Swind/go-executor/observability/zerolog"
)

// app is the per-invocation wiring: config, logger and metrics.
type app struct {
	cfg      config.Config
	logger   core.Logger
	registry *prom.Registry
	exporter *obs.MetricsExporter
	out      io.Writer
	errOut   io.Writer
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.metricsListen != "" {
		cfg.Metrics.Listen = opts.metricsListen
	}
	if opts.queueCapacity != 0 {
		cfg.Executor.QueueCapacity = opts.queueCapacity
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.Log.ZerologLevel()
	var logger *zlog.Logger
	if cfg.Log.Format == "json" {
		logger = zlog.NewJSON(cmd.ErrOrStderr(), level)
	} else {
		logger = zlog.NewConsole(cmd.ErrOrStderr(), level)
	}

	registry := prom.NewRegistry()
	exporter, err := obs.NewMetricsExporter(obs.DefaultNamespace, registry, obs.ExporterOptions{})
	if err != nil {
		return nil, fmt.Errorf("metrics exporter: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		exporter: exporter,
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}, nil
}

// newScheduler builds an executor from the loaded configuration.
func (a *app) newScheduler() (*core.Executor, *core.Spawner) {
	cfg := a.cfg.ExecutorConfig(a.logger, a.exporter)
	cfg.PanicHandler = logHandlers{a.logger}
	cfg.RejectedTaskHandler = logHandlers{a.logger}
	return core.NewScheduler(cfg)
}

// logHandlers reports panics and rejections through the logger instead of
// printing them.
type logHandlers struct {
	logger core.Logger
}

func (h logHandlers) HandlePanic(executorName string, taskID core.TaskID, taskName string, panicInfo any, stackTrace []byte) {
	h.logger.Error("Task panicked",
		core.F("executor", executorName), core.F("task", taskID), core.F("name", taskName),
		core.F("panic", fmt.Sprint(panicInfo)), core.F("stack", string(stackTrace)))
}

func (h logHandlers) HandleRejectedTask(executorName string, reason string) {
	h.logger.Warn("Spawn rejected", core.F("executor", executorName), core.F("reason", reason))
}

// run drives exec until its queue is closed and drained, serving metrics
// alongside when configured. delays are exported by the snapshot poller.
func (a *app) run(ctx context.Context, exec *core.Executor, delays ...*core.DelayManager) error {
	var poller *obs.SnapshotPoller
	if a.cfg.Metrics.Listen != "" {
		interval, _ := a.cfg.Metrics.Interval()
		var err error
		if poller, err = obs.NewSnapshotPoller(a.registry, interval); err != nil {
			return err
		}
		poller.AddExecutor(exec.Name(), exec)
		for i, dm := range delays {
			poller.AddDelayManager(fmt.Sprintf("%s-delays-%d", exec.Name(), i), dm)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	sideCtx, stopSide := context.WithCancel(gctx)
	defer stopSide()

	g.Go(func() error {
		defer stopSide()
		return exec.RunContext(gctx)
	})

	if poller != nil {
		g.Go(func() error { return poller.Run(sideCtx) })
		g.Go(func() error { return a.serveMetrics(sideCtx) })
	}

	return g.Wait()
}

func (a *app) serveMetrics(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.cfg.Metrics.Listen)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	a.logger.Info("Serving metrics", core.F("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// printStats writes the executor summary line.
func (a *app) printStats(exec *core.Executor) {
	s := exec.Stats()
	fmt.Fprintf(a.out, "executor=%s spawned=%d completed=%d polls=%d wakes=%d panics=%d abandoned=%d\n",
		s.Name, s.Spawned, s.Completed, s.Polls, s.Wakes, s.Panics, s.Abandoned)
}
