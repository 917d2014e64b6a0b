package main

import (
	"fmt"

	"github.com/verdant-ai/verdant/internal/config"
	"github.com/verdant-ai/verdant/internal/evaluator"
	"github.com/verdant-ai/verdant/internal/providers"
	"github.com/verdant-ai/verdant/internal/selection"
	"github.com/verdant-ai/verdant/internal/store"
)

var configPath string

// app bundles the engine pieces every subcommand needs. Close must be called
// when the command finishes.
type app struct {
	cfg        *config.Config
	store      *store.Store
	evaluator  *evaluator.Evaluator
	engine     *selection.Engine
	generators map[string]providers.Generator
}

func loadApp(opts ...evaluator.Option) (*app, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}

	gens, err := providers.NewAll(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing providers: %w", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database, err)
	}

	ev := evaluator.New(cfg, opts...)
	return &app{
		cfg:        cfg,
		store:      st,
		evaluator:  ev,
		engine:     selection.New(cfg, ev, gens),
		generators: gens,
	}, nil
}

// loadConfigOnly is for subcommands that need configuration but no database
// or providers.
func loadConfigOnly() (*config.Config, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
