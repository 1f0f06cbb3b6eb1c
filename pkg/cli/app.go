package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/tasknotify/pkg/clock"
	"github.com/harrisonrobin/tasknotify/pkg/config"
	"github.com/harrisonrobin/tasknotify/pkg/engine"
	"github.com/harrisonrobin/tasknotify/pkg/fcm"
	"github.com/harrisonrobin/tasknotify/pkg/google"
	"github.com/harrisonrobin/tasknotify/pkg/kv"
	"github.com/harrisonrobin/tasknotify/pkg/onesignal"
	"github.com/harrisonrobin/tasknotify/pkg/store"
)

// app is everything a command needs, built from the config.
type app struct {
	cfg    *config.Config
	kv     kv.Store
	store  *store.TaskStore
	engine *engine.Engine
	device *time.Location
	// outbox is set for the fcm provider.
	outbox *fcm.Outbox
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured kv store without building a scheduler.
func openStore(cfg *config.Config) (kv.Store, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	return kv.Open(cfg.Store.Driver, path, cfg.Store.DSN)
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	target, err := clock.LoadZone(cfg.TargetZone)
	if err != nil {
		return nil, err
	}
	device, err := clock.LoadZone(cfg.DeviceZone)
	if err != nil {
		return nil, err
	}

	kvs, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	ts := store.New(kvs)

	a := &app{cfg: cfg, kv: kvs, store: ts, device: device}

	scheduler, err := a.newScheduler(ctx)
	if err != nil {
		kvs.Close()
		return nil, err
	}

	a.engine = engine.New(scheduler, ts, engine.Options{TargetZone: target, DeviceZone: device})
	a.engine.LoadTasks(ctx)
	return a, nil
}

func (a *app) newScheduler(ctx context.Context) (engine.Scheduler, error) {
	switch a.cfg.Provider {
	case config.ProviderOneSignal:
		return onesignal.NewClient(onesignal.Config{
			AppID:   a.cfg.OneSignal.AppID,
			APIKey:  a.cfg.OneSignal.APIKey,
			BaseURL: a.cfg.OneSignal.BaseURL,
			Timeout: a.cfg.OneSignal.Timeout,
		}, a.store), nil
	case config.ProviderCalendar:
		return google.NewClient(ctx, a.cfg.Calendar.Name, a.store)
	case config.ProviderFCM:
		a.outbox = fcm.NewOutbox(a.kv, a.store)
		return a.outbox, nil
	}
	return nil, fmt.Errorf("unknown provider %q", a.cfg.Provider)
}

func (a *app) Close() error {
	return a.kv.Close()
}
