package main

import (
	"context"
	"fmt"
	"log/slog"

	Md "github.com/maroda/tempo/display"
	Mo "github.com/maroda/tempo/obvy"
	Mp "github.com/maroda/tempo/plugin"
	Ms "github.com/maroda/tempo/server"
)

const (
	defaultPort       = ":8090"
	defaultDataDir    = "./data/reports"
	defaultBatchSize  = 8
	defaultPoseSource = "json_landmarks"
)

func main() {
	user := Ms.FillEnvVar("USER")
	fmt.Printf("Tempo initializing for ... %s\n", user)

	// Config file is optional, env fills the gaps
	var cfg *Ms.ConfigFile
	cfgFile := Ms.FillEnvVar("TEMPO_CONFIG")
	if cfgFile != "ENOENT" {
		loaded, err := Ms.LoadConfigFileName(cfgFile)
		if err != nil {
			slog.Error("Could not load config", slog.Any("Error", err))
			panic("Failed to load config file")
		}
		cfg = loaded
	} else {
		cfg = &Ms.ConfigFile{}
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}

	// Tracing export is opt-in, Honeycomb wins when both are set
	if Ms.FillEnvVar("HONEYCOMB_API_KEY") != "ENOENT" {
		shutdown, err := Mo.InitOTelHNY()
		if err != nil {
			slog.Error("Could not init tracing", slog.Any("Error", err))
		} else {
			defer shutdown()
		}
	} else if Ms.FillEnvVar("OTEL_EXPORTER_OTLP_ENDPOINT") != "ENOENT" {
		tp, err := Mo.InitOTelGRF()
		if err != nil {
			slog.Error("Could not init tracing", slog.Any("Error", err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	// Profiles: curated defaults, file overrides on top
	profiles := Ms.NewProfileStore()
	if cfg.ProfileFile != "" {
		loaded, err := Ms.LoadProfileFileName(cfg.ProfileFile)
		if err != nil {
			slog.Error("Could not load profiles", slog.Any("Error", err))
			panic("Failed to load profile file")
		}
		profiles = loaded
	}
	slog.Info("Profiles ready",
		slog.String("Version", profiles.Version),
		slog.Bool("Complete", profiles.Complete()))

	stats := Mo.NewStatsInternal()

	store, err := Mp.NewReportStore(cfg.DataDir, defaultBatchSize)
	if err != nil {
		slog.Error("Could not open report store", slog.Any("Error", err))
		panic("Failed to open report store")
	}
	defer store.Close()

	analyzer, err := Ms.NewAnalyzer(profiles, stats, store)
	if err != nil {
		slog.Error("Could not build analyzer", slog.Any("Error", err))
		panic("Failed to build analyzer")
	}

	source, err := Mp.SourceLookup(defaultPoseSource)
	if err != nil {
		slog.Error("Could not find pose source", slog.Any("Error", err))
		panic("Failed to find pose source")
	}

	view, err := Md.NewView(analyzer, source, store, stats)
	if err != nil {
		slog.Error("Could not build data view", slog.Any("Error", err))
		panic("Failed to build data view")
	}

	// With a TTY the terminal display runs alongside the web server
	if Ms.FillEnvVar("TEMPO_TUI") != "ENOENT" {
		if err := Md.StartScoreView(view, cfg.Port); err != nil {
			slog.Error("Problem starting ScoreView", slog.Any("Error", err))
			panic("Failed to start score view")
		}
		return
	}

	if err := view.StartWeb(cfg.Port); err != nil {
		slog.Error("Problem starting web server", slog.Any("Error", err))
		panic("Failed to start web server")
	}
}
