package main

import (
	"context"
	"flag"
	"os"

	"github.com/VirusHacks/kaizen/cfg"
	"github.com/VirusHacks/kaizen/internal/collector"
	"github.com/VirusHacks/kaizen/internal/githubapi"
	"github.com/VirusHacks/kaizen/pkg/log"
)

func main() {
	owner := flag.String("owner", "", "GitHub account whose repositories to collect")
	token := flag.String("token", "", "GitHub API token, falls back to the configured token")
	prefix := flag.String("output-prefix", "debugfest", "Prefix for the JSON and CSV output files")
	flag.Parse()

	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, _ := loader.Load()
	logger, _ := log.NewCslLogger()

	if *owner == "" {
		logger.Error(ctx, "Usage: repostats --owner <account> [--token <token>] [--output-prefix <prefix>]")
		os.Exit(1)
	}
	if *token != "" {
		config.GithubApi.AccessToken = *token
	}
	if config.GithubApi.AccessToken == "" {
		logger.Error(ctx, "A GitHub token is required, pass --token or set GITHUB_TOKEN")
		os.Exit(1)
	}

	caller, _ := githubapi.NewCaller(logger, config)
	statsCollector, _ := collector.NewCollector(logger, config, caller)

	logger.Info(ctx, "Starting repository stats collection")
	stats, err := statsCollector.CollectOwner(ctx, *owner)
	if err != nil {
		logger.Error(ctx, "Collection failed: %v", err)
		os.Exit(1)
	}

	jsonPath := collector.JSONPath(*prefix)
	if err := collector.WriteJSON(stats, jsonPath); err != nil {
		logger.Error(ctx, "Failed to write %s: %v", jsonPath, err)
		os.Exit(1)
	}
	logger.Info(ctx, "Wrote %s", jsonPath)

	csvPath := collector.CSVPath(*prefix)
	if err := collector.WriteCSV(stats, csvPath); err != nil {
		logger.Error(ctx, "Failed to write %s: %v", csvPath, err)
		os.Exit(1)
	}
	logger.Info(ctx, "Wrote %s", csvPath)

	logger.Info(ctx, "Successfully!")
}
