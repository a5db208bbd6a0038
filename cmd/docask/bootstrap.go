package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docask/internal/adapters/driven/config/file"
	embedollama "github.com/custodia-labs/docask/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/docask/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/docask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docask/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docask/internal/adapters/driving/cli"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/services"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/metrics"
	"github.com/custodia-labs/docask/internal/normalisers"
)

// bootstrap is the composition root: it loads settings and wires every
// adapter into the core services.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Runtime, error) {
	settingsStore, err := file.NewSettingsStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	settings := settingsStore.Load()
	if opts.Prune {
		settings.Ingest.Prune = true
	}

	logger.Configure(logger.Config{Level: settings.Log.Level, Pretty: settings.Log.Pretty})
	logger.SetVerbose(opts.Verbose)

	rt := &cli.Runtime{
		Settings:      settings,
		SettingsStore: settingsStore,
		Close:         func() error { return nil },
	}
	if opts.SettingsOnly {
		return rt, nil
	}

	var (
		chunks  driven.ChunkStore
		history driven.ScanHistory
		closers []func() error
	)
	health := map[string]metrics.HealthFunc{}

	if opts.DryRun {
		logger.Info("Dry run: using an in-memory store")
		chunks = memory.NewChunkStore()
		history = memory.NewScanHistory()
	} else {
		store, err := sqlite.NewStore(settings.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Chunk store at %s", store.Path())
		chunks = store.ChunkStore()
		history = store.ScanHistory()
		closers = append(closers, store.Close)
		health["store"] = store.Ping
	}

	m := metrics.New()

	llm := ollama.NewLLMService(ollama.LLMConfig{
		BaseURL: settings.LLM.BaseURL,
		Model:   settings.LLM.Model,
		Timeout: settings.LLM.Timeout,
	})
	closers = append(closers, llm.Close)
	health["llm"] = llm.Ping

	var embedder driven.EmbeddingService
	if settings.Embedding.Enabled {
		e := embedollama.NewEmbeddingService(embedollama.Config{
			BaseURL:           settings.Embedding.BaseURL,
			Model:             settings.Embedding.Model,
			RequestsPerSecond: settings.Embedding.RequestsPerSecond,
		})
		embedder = e
		closers = append(closers, e.Close)
		health["embedding"] = e.Ping
	}

	prompts, err := file.NewPromptStore(filepath.Join(filepath.Dir(settingsStore.Path()), "prompts"))
	if err != nil {
		logger.Warn("Prompt files unavailable, using built-in prompts: %v", err)
	}

	ingest := services.NewIngestService(chunks, normalisers.DefaultRegistry(), settings.Ingest)
	ingest.SetMetrics(m)

	search := services.NewSearchService(chunks)
	search.SetMetrics(m)

	if embedder != nil {
		ingest.SetEmbeddingService(embedder)
		search.SetEmbeddingService(embedder)
	}

	answer := services.NewAnswerService(search, chunks, llm, settings.Answer)
	answer.SetMetrics(m)
	if prompts != nil {
		answer.SetPromptStore(prompts)
	}

	rt.Ingestor = ingest
	rt.Search = search
	rt.Assistant = answer
	rt.Library = services.NewLibraryService(chunks, history)
	rt.Scheduler = services.NewRescanScheduler(ingest, history, settings.Ingest)
	rt.Metrics = m
	rt.HealthChecks = health
	rt.Close = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	return rt, nil
}
