package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	attendance "github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/pkg/api"
	"github.com/goliatone/go-attendance/pkg/config"
	"github.com/goliatone/go-attendance/pkg/themestore"
)

type runtime struct {
	cfg      config.Config
	app      *attendance.App
	logger   *zap.Logger
	registry *prometheus.Registry
	closers  []func() error
}

func (g *globals) resolve() (config.Config, error) {
	cfg, err := config.Load(config.Sources{ConfigFile: g.Config, EnvFile: g.EnvFile})
	if err != nil {
		return config.Config{}, err
	}
	if g.BaseURL != "" {
		cfg.BaseURL = g.BaseURL
	}
	if g.Locale != "" {
		cfg.Locale = g.Locale
	}
	if g.ThemeFile != "" {
		cfg.ThemeFile = g.ThemeFile
	}
	if g.RedisAddr != "" {
		cfg.RedisAddr = g.RedisAddr
	}
	cfg.Breaker.Enabled = cfg.Breaker.Enabled || g.Breaker
	cfg.Demo = cfg.Demo || g.Demo
	cfg.Debug = cfg.Debug || g.Debug
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	return zcfg.Build()
}

func newRuntime(g *globals, actionBase string) (*runtime, error) {
	cfg, err := g.resolve()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("attendctl: logger: %w", err)
	}
	rt := &runtime{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}

	gateway, err := rt.gateway()
	if err != nil {
		return nil, err
	}
	store, err := rt.themeStore()
	if err != nil {
		return nil, err
	}
	app, err := attendance.NewApp(attendance.Options{
		Gateway:    gateway,
		ThemeStore: store,
		Telemetry:  attendance.NewZapTelemetry(logger),
		Messages:   attendance.NewMessages(cfg.Locale, nil),
		ActionBase: actionBase,
	})
	if err != nil {
		return nil, err
	}
	rt.app = app
	rt.closers = append(rt.closers, func() error {
		app.Notifier().Close()
		return nil
	})
	return rt, nil
}

func (rt *runtime) gateway() (attendance.Gateway, error) {
	if rt.cfg.Demo {
		rt.logger.Info("using demo backend")
		return api.NewMockClient(api.DemoData()), nil
	}
	metrics, err := api.NewMetrics(rt.registry)
	if err != nil {
		return nil, fmt.Errorf("attendctl: metrics: %w", err)
	}
	httpCfg := api.HTTPConfig{BaseURL: rt.cfg.BaseURL, Metrics: metrics}
	if rt.cfg.Breaker.Enabled {
		httpCfg.Breaker = api.NewBreaker(api.BreakerConfig{
			Failures: rt.cfg.Breaker.Failures,
			Cooldown: rt.cfg.Breaker.Cooldown,
			Logger:   rt.logger,
		})
	}
	return api.NewHTTPClient(httpCfg)
}

func (rt *runtime) themeStore() (attendance.ThemeStore, error) {
	switch {
	case rt.cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: rt.cfg.RedisAddr})
		rt.closers = append(rt.closers, client.Close)
		return themestore.NewRedisStore(client, rt.cfg.RedisPrefix)
	case rt.cfg.ThemeFile != "":
		return themestore.NewFileStore(rt.cfg.ThemeFile)
	default:
		return nil, nil
	}
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			rt.logger.Warn("close", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
