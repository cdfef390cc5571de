package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dynbridge/binder"
	"github.com/wippyai/dynbridge/config"
	"github.com/wippyai/dynbridge/engine"
	"github.com/wippyai/dynbridge/loader"
	"github.com/wippyai/dynbridge/runtime"
	"github.com/wippyai/dynbridge/samples"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.Default(), nil
		}
		path = found
	}
	return config.LoadConfig(path)
}

// setup builds a runtime from the configuration file and loads the
// configured modules followed by those named with -load.
func setup(ctx context.Context, opts options) (*runtime.Runtime, error) {
	cfg, err := loadConfig(opts.config)
	if err != nil {
		return nil, err
	}

	logger, err := cfg.BuildLogger()
	if err != nil {
		return nil, err
	}

	binder.SetLogger(logger.Named("binder"))
	engine.SetLogger(logger.Named("engine"))

	rt, err := runtime.New(ctx,
		runtime.WithLogger(logger),
		runtime.WithLocation(cfg.TimeLocation()),
		runtime.WithEngineConfig(&engine.Config{MemoryLimitPages: cfg.MemoryLimitPages}),
	)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}

	if err := loadModules(ctx, rt, cfg, opts.load, logger); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return rt, nil
}

func loadModules(ctx context.Context, rt *runtime.Runtime, cfg *config.Config, extra string, logger *zap.Logger) error {
	if cfg.SamplesEnabled() {
		mod, err := samples.New()
		if err != nil {
			return fmt.Errorf("samples: %w", err)
		}
		rt.Loader().Provide(mod)
		if err := rt.Load(mod); err != nil {
			return fmt.Errorf("samples: %w", err)
		}
	}

	for _, m := range cfg.Modules {
		if _, err := rt.LoadFile(ctx, loader.File{Path: m.Path, WIT: m.WIT, Name: m.Name, Version: m.Version}); err != nil {
			return fmt.Errorf("load %s: %w", m.Path, err)
		}
	}

	for _, name := range strings.Split(extra, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mod, err := rt.LoadModule(ctx, name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		logger.Debug("loaded from command line", zap.String("module", mod.FullName()))
	}
	return nil
}
