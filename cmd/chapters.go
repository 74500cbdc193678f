package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/providers"
	"github.com/brogergvhs/parkdl/internal/providers/mangapark"
	"github.com/brogergvhs/parkdl/internal/ui"

	"github.com/spf13/cobra"
)

func init() {
	chaptersCmd := &cobra.Command{
		Use:   "chapters",
		Short: "List the chapters of a manga, oldest first, with the indices --chapter, --range and --list use",
		RunE:  runChapters,
	}

	addSiteFlags(chaptersCmd)
	rootCmd.AddCommand(chaptersCmd)
}

func runChapters(cmd *cobra.Command, _ []string) error {
	cfg, _, err := config.LoadMerged(config.DefaultStore(), siteOptions())
	if err != nil {
		return err
	}

	target, err := targetURL(cfg)
	if err != nil {
		return err
	}

	slug, ok := mangapark.ParseMangaURL(target)
	if !ok {
		return fmt.Errorf("%w: %s", providers.ErrUnsupportedURL, target)
	}
	if _, isChapter := mangapark.ParseChapterURL(target); isChapter {
		return fmt.Errorf("%s is a chapter URL, pass the manga page instead", target)
	}

	log := ui.NewLoggerTo(os.Stderr, cfg.Debug)
	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}

	all, err := mangapark.NewMangaExtractor(slug, s.site, s.fetcher, log).Chapters(context.Background())
	if err != nil {
		return err
	}

	selected := providers.Filter(all, flagChapter, cfg.DefaultRange, cfg.DefaultList)
	index := make(map[string]int, len(all))
	for i, ch := range all {
		index[ch.URL] = i + 1
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tTITLE\tURL")
	for _, ch := range selected {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", index[ch.URL], ch.Title, ch.URL)
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
	}

	fmt.Printf("\n%d of %d chapters\n", len(selected), len(all))
	return nil
}
