package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	attendance "github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/components/attendance/gorouter"
	"github.com/goliatone/go-attendance/components/attendance/httpapi"
)

type serveCmd struct {
	Listen  string `help:"Console listen address (overrides config)."`
	Metrics string `name:"metrics-listen" help:"Serve Prometheus metrics on this address (overrides config)."`
}

// Run serves one console per process. Every browser tab shares the same App.
func (cmd *serveCmd) Run(ctx context.Context, g *globals) error {
	rt, err := newRuntime(g, attendance.DefaultActionBase)
	if err != nil {
		return err
	}
	defer rt.Close()

	listen := rt.cfg.Listen
	if cmd.Listen != "" {
		listen = cmd.Listen
	}
	metricsListen := rt.cfg.MetricsListen
	if cmd.Metrics != "" {
		metricsListen = cmd.Metrics
	}

	rt.app.Start(ctx)

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:        server.Router(),
		API:           httpapi.NewCommandExecutor(rt.app, attendance.NewZapTelemetry(rt.logger)),
		Notifications: rt.app.Notifier(),
		Messages:      rt.app.Messages(),
	}); err != nil {
		return err
	}

	if metricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
		metrics := &http.Server{Addr: metricsListen, Handler: mux}
		rt.closers = append(rt.closers, func() error { return metrics.Shutdown(context.Background()) })
		go func() {
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error("metrics server", zap.Error(err))
			}
		}()
		rt.logger.Info("metrics ready", zap.String("addr", metricsListen))
	}

	rt.logger.Info("console ready",
		zap.String("url", "http://"+listen+"/console"),
		zap.Bool("demo", rt.cfg.Demo),
	)
	return server.Serve(listen)
}
