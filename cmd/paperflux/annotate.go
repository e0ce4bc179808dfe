package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paperflux/paperflux/internal/config"
	"github.com/paperflux/paperflux/internal/logging"
	"github.com/paperflux/paperflux/internal/pdfdoc"
	"github.com/paperflux/paperflux/internal/pipeline"
	"github.com/paperflux/paperflux/internal/quote"
)

var (
	configPath string
	outputDir  string
	quotesFile string
	dryRun     bool
	verbose    bool
	jobs       int
)

func runAnnotate(cmd *cobra.Command, args []string) error {
	// A .env next to the binary may carry config secrets (ENV:
	// expansion) and the unipdf license key; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging.Style, cfg.Logging.Level, verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := pdfdoc.SetLicenseFromEnv(); err != nil {
		return err
	}

	docs, err := expandInputs(args)
	if err != nil {
		return err
	}
	log.Info("starting annotation run",
		zap.Int("documents", len(docs)),
		zap.Bool("dry_run", dryRun),
		zap.Int("jobs", jobs))

	var source quote.Source = quote.SiblingSource{}
	if quotesFile != "" {
		source = quote.FileSource{Path: quotesFile}
	}

	results, err := pipeline.Batch(cmd.Context(), docs, source, pipeline.Options{
		Config:    cfg,
		Logger:    log,
		OutputDir: outputDir,
		DryRun:    dryRun,
		Jobs:      jobs,
	})
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d found, %d highlights, %d missing\n",
			res.DocPath, res.Found, res.Highlights, len(res.Missing))
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandInputs resolves each argument: plain paths must exist, glob
// patterns must match at least one file. The result is deduplicated
// and sorted for a stable processing order.
func expandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var docs []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			docs = append(docs, path)
		}
	}

	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("input document %s: %w", arg, err)
			}
			add(arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad glob pattern %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no documents match %s", arg)
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(docs)
	return docs, nil
}
