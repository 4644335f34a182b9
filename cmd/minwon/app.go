package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/cognicore/minwon/internal/llm"
	"github.com/cognicore/minwon/pkg/minwon"
	"github.com/cognicore/minwon/pkg/minwon/classify"
	"github.com/cognicore/minwon/pkg/minwon/config"
	"github.com/cognicore/minwon/pkg/minwon/ingest"
	"github.com/cognicore/minwon/pkg/minwon/metrics"
	"github.com/cognicore/minwon/pkg/minwon/store"
	"github.com/cognicore/minwon/pkg/minwon/store/memstore"
	"github.com/cognicore/minwon/pkg/minwon/store/sqlite"
)

type settings struct {
	KeywordsPath string
	LexiconPath  string
	DBPath       string
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	LogLevel     string
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		KeywordsPath: v.GetString("config"),
		LexiconPath:  v.GetString("lexicon"),
		DBPath:       v.GetString("db"),
		LLMBaseURL:   v.GetString("llm-base-url"),
		LLMModel:     v.GetString("llm-model"),
		LLMAPIKey:    v.GetString("llm-api-key"),
		LogLevel:     v.GetString("log-level"),
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// app bundles the components every subcommand works with.
type app struct {
	logger     *slog.Logger
	pipeline   *ingest.Pipeline
	classifier classify.Classifier // nil when no LLM endpoint is configured
	exporter   *metrics.Exporter
	store      store.Store
	service    *minwon.Service
}

func newApp(ctx context.Context, s settings, logger *slog.Logger) (*app, error) {
	exporter := metrics.NewExporter(metrics.DefaultConfig())

	loader := config.Loader{
		KeywordsPath: s.KeywordsPath,
		LexiconPath:  s.LexiconPath,
		Logger:       logger,
		Observer:     exporter,
	}
	components, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var st store.Store
	if s.DBPath != "" {
		st, err = sqlite.OpenSQLite(ctx, s.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	} else {
		st = memstore.New()
	}

	a := &app{
		logger:   logger,
		pipeline: components.Pipeline,
		exporter: exporter,
		store:    st,
	}
	if s.LLMBaseURL != "" && s.LLMModel != "" {
		c := classify.NewLLM(&llm.Client{
			BaseURL: s.LLMBaseURL,
			APIKey:  s.LLMAPIKey,
			Model:   s.LLMModel,
			Logger:  logger,
		}, logger)
		c.Observe = exporter.ObserveClassify
		a.classifier = c
	}

	a.wire()
	return a, nil
}

// wire (re)builds the service from the app's components.
func (a *app) wire() {
	a.service = minwon.New(minwon.Options{
		Store:      a.store,
		Pipeline:   a.pipeline,
		Classifier: a.classifier,
		Recorder:   a.exporter,
		Logger:     a.logger,
	})
}

func (a *app) Close() error {
	return a.service.Close()
}

// openApp builds the app from the command's resolved flags and environment.
func openApp(ctx context.Context, v *viper.Viper, logOut io.Writer) (*app, error) {
	s := loadSettings(v)
	return newApp(ctx, s, newLogger(logOut, s.LogLevel))
}
