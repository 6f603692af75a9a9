package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/petasbytes/go-astra/internal/config"
	astralog "github.com/petasbytes/go-astra/internal/log"
	"github.com/petasbytes/go-astra/internal/metrics"
	"github.com/petasbytes/go-astra/internal/provider"
	"github.com/petasbytes/go-astra/internal/runner"
	"github.com/petasbytes/go-astra/memory"
)

// app holds what the commands share for one invocation.
type app struct {
	cfgFile string

	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   memory.Store
	closers []func() error
}

func (a *app) load(flags *pflag.FlagSet) error {
	cfg, err := config.Load(config.Options{File: a.cfgFile, Flags: flags})
	if err != nil {
		return err
	}
	logger, err := astralog.New(astralog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.metrics = metrics.New()
	return nil
}

// openStore opens the configured backend once.
func (a *app) openStore() (memory.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	switch a.cfg.Memory.Backend {
	case "file":
		s, err := memory.NewFileStore(a.cfg.Memory.Dir)
		if err != nil {
			return nil, err
		}
		a.store = s
	case "sqlite":
		s, err := memory.OpenSQLite(a.cfg.Memory.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.store = s
		a.closers = append(a.closers, s.Close)
	case "memory":
		a.store = memory.NewMemStore()
	default:
		return nil, fmt.Errorf("unknown memory backend %q", a.cfg.Memory.Backend)
	}
	a.logger.Debug("memory store opened", zap.String("backend", a.cfg.Memory.Backend))
	return a.store, nil
}

func (a *app) newModel() (provider.Model, error) {
	llm := a.cfg.LLM
	timeout := time.Duration(llm.TimeoutSeconds) * time.Second
	switch llm.Provider {
	case "ollama":
		return provider.NewOllama(provider.OllamaConfig{
			Endpoint: llm.OllamaEndpoint,
			Model:    llm.OllamaModel,
			Timeout:  timeout,
		}), nil
	case "anthropic":
		if llm.AnthropicAPIKey == "" {
			return nil, errors.New("missing ANTHROPIC_API_KEY; export it or set llm.anthropic_api_key")
		}
		var opts []option.RequestOption
		if timeout > 0 {
			opts = append(opts, option.WithRequestTimeout(timeout))
		}
		client := provider.NewAnthropicClient(llm.AnthropicAPIKey, opts...)
		return provider.NewAnthropic(client, provider.AnthropicConfig{
			Model:     llm.AnthropicModel,
			MaxTokens: llm.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", llm.Provider)
	}
}

// newMemory serves the store-only operations without building a model.
func (a *app) newMemory() (*runner.Memory, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return runner.NewMemory(store, a.logger), nil
}

func (a *app) newRunner() (*runner.Runner, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	model, err := a.newModel()
	if err != nil {
		return nil, err
	}
	m := a.cfg.Memory
	return runner.New(store, model, runner.Options{
		AgentName:      a.cfg.Agent.Name,
		RecentTurns:    m.RecentTurns,
		SummarizeEvery: m.SummarizeEvery,
		SummaryWindow:  m.SummaryWindow,
		CondenseBatch:  m.CondenseBatch,
		Logger:         a.logger,
		Metrics:        a.metrics,
	}), nil
}

// shutdown writes the metrics file and releases resources. Safe to call
// when load never ran.
func (a *app) shutdown() error {
	var errs []error
	if a.cfg != nil && a.cfg.Metrics.File != "" && a.metrics != nil {
		errs = append(errs, a.metrics.WriteTextfile(a.cfg.Metrics.File))
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
