package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brogergvhs/parkdl/internal/archive"
	"github.com/brogergvhs/parkdl/internal/config"
	"github.com/brogergvhs/parkdl/internal/downloader"
	"github.com/brogergvhs/parkdl/internal/job"
	"github.com/brogergvhs/parkdl/internal/ui"
	"github.com/brogergvhs/parkdl/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagAllowExt string

	// runtime
	flagOutput         string
	flagImageWorkers   int
	flagChapterWorkers int
	flagKeepFolders    bool
	flagDryRun         bool
	flagSkipBroken     bool
	flagCBZ            bool
	flagArchive        string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download chapters of a manga or a single chapter. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	addSiteFlags(downloadCmd)
	downloadCmd.Flags().StringVar(&flagAllowExt, "allow-ext", "", "Allowed image extensions (e.g. \"webp|jpg|png\")")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "base output folder")
	downloadCmd.Flags().IntVar(&flagImageWorkers, "image-workers", 5, "parallel image downloads per chapter")
	downloadCmd.Flags().IntVar(&flagChapterWorkers, "chapter-workers", 2, "parallel chapter downloads")
	downloadCmd.Flags().BoolVar(&flagKeepFolders, "keep-folders", false, "keep page folders after packing a CBZ")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don’t download")
	downloadCmd.Flags().BoolVar(&flagSkipBroken, "skip-broken", false, "skip failed images instead of failing the whole chapter")
	downloadCmd.Flags().BoolVar(&flagCBZ, "cbz", false, "pack every chapter into a CBZ file")
	downloadCmd.Flags().StringVar(&flagArchive, "archive", "", "SQLite file recording downloaded pages, skipped on later runs")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	opts := siteOptions()
	opts.Output = flagOutput
	opts.KeepFolders = flagKeepFolders
	opts.SkipBroken = flagSkipBroken
	opts.CBZ = flagCBZ
	opts.Archive = flagArchive

	cfg, usedPath, err := config.LoadMerged(config.DefaultStore(), opts)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("image-workers") {
		cfg.ImageWorkers = flagImageWorkers
	}
	if cmd.Flags().Changed("chapter-workers") {
		cfg.ChapterWorkers = flagChapterWorkers
	}
	if flagAllowExt != "" {
		cfg.AllowExt = splitExt(flagAllowExt)
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	target, err := targetURL(cfg)
	if err != nil {
		return err
	}

	if flagChapter != "" && (cfg.DefaultRange != "" || cfg.DefaultList != "") {
		logSvc.Warnf("--chapter given, ignoring range %q and list %q\n", cfg.DefaultRange, cfg.DefaultList)
	}

	s, err := newSession(cfg, logSvc)
	if err != nil {
		return err
	}

	var arch *archive.Archive
	if cfg.Archive != "" && !flagDryRun {
		arch, err = archive.Open(cfg.Archive)
		if err != nil {
			return err
		}
		defer arch.Close()
		logSvc.Debugf("archive: %s\n", arch.Path())
	}

	ctx := context.Background()
	util.SetupInterruptHandler(cfg.Output)

	pm := ui.NewProgressManager(os.Stdout)
	dl := downloader.New(s.fetcher.Client, cfg.Debug, cfg.SkipBroken, cfg.AllowExt)

	j := job.New(s.resolve, dl, arch, pm, logSvc, os.Stdout, job.Options{
		Output:         cfg.Output,
		DirectoryFmt:   cfg.DirectoryFmt,
		FilenameFmt:    cfg.FilenameFmt,
		Chapter:        flagChapter,
		Range:          cfg.DefaultRange,
		List:           cfg.DefaultList,
		ChapterWorkers: cfg.ChapterWorkers,
		ImageWorkers:   cfg.ImageWorkers,
		CBZ:            cfg.CBZ,
		KeepFolders:    cfg.KeepFolders,
		DryRun:         flagDryRun,
	})

	start := time.Now()
	runErr := j.Run(ctx, target)
	pm.Close()

	if flagDryRun {
		return runErr
	}

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Chapters: %d\n", j.Stats.TotalChapters.Load())
	if n := j.Stats.FailedChapters.Load(); n > 0 {
		fmt.Printf("Failed:   %d\n", n)
	}
	fmt.Printf("Images:   %d\n", j.Stats.TotalImages.Load())
	if n := j.Stats.SkippedImages.Load(); n > 0 {
		fmt.Printf("Skipped:  %d\n", n)
	}
	fmt.Printf("Data:     %s\n", util.Human(j.Stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	if runErr != nil {
		return runErr
	}

	fmt.Println("\nAll done.")
	return nil
}
