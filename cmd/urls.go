package cmd

import (
	"context"
	"os"

	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/job"
	"github.com/brogergvhs/parkdl/internal/ui"

	"github.com/spf13/cobra"
)

var flagJSON bool

func init() {
	urlsCmd := &cobra.Command{
		Use:   "urls",
		Short: "Print page image URLs without downloading them",
		RunE:  runURLs,
	}

	addSiteFlags(urlsCmd)
	urlsCmd.Flags().BoolVar(&flagJSON, "json", false, "print every extractor message as a JSON line")

	rootCmd.AddCommand(urlsCmd)
}

func runURLs(cmd *cobra.Command, _ []string) error {
	cfg, _, err := config.LoadMerged(config.DefaultStore(), siteOptions())
	if err != nil {
		return err
	}

	target, err := targetURL(cfg)
	if err != nil {
		return err
	}

	// stdout carries only URLs
	log := ui.NewLoggerTo(os.Stderr, cfg.Debug)
	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}

	j := job.New(s.resolve, nil, nil, nil, log, os.Stdout, job.Options{
		Chapter: flagChapter,
		Range:   cfg.DefaultRange,
		List:    cfg.DefaultList,
	})

	return j.PrintURLs(context.Background(), target, flagJSON)
}
