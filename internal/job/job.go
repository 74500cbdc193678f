// Package job consumes extractor message streams: it lays out directories,
// names pages, follows queued chapters and hands downloads to the
// downloader.
package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/brogergvhs/parkdl/internal/archive"
	"github.com/brogergvhs/parkdl/internal/downloader"
	"github.com/brogergvhs/parkdl/internal/message"
	"github.com/brogergvhs/parkdl/internal/providers"
	"github.com/brogergvhs/parkdl/internal/ui"
	"github.com/brogergvhs/parkdl/internal/util"
)

type Options struct {
	Output       string
	DirectoryFmt []string
	FilenameFmt  string

	// selection over queued chapters, 1-based, oldest first
	Chapter string
	Range   string
	List    string

	ChapterWorkers int
	ImageWorkers   int

	CBZ         bool
	KeepFolders bool
	DryRun      bool
}

type Downloader interface {
	Download(ctx context.Context, items []downloader.Item, referer string, maxParallel int, ph ui.Progress) (downloader.Result, error)
}

type ProgressFactory interface {
	Register(prefix string) ui.Progress
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopProgress struct{}

func (nopProgress) Register(string) ui.Progress { return ui.NopProgress{} }

type Job struct {
	resolve  providers.Resolver
	dl       Downloader
	archive  *archive.Archive
	progress ProgressFactory
	log      Logger
	out      io.Writer
	outMu    sync.Mutex
	opts     Options

	Stats ui.Stats
}

// New builds a job. arch and progress may be nil; out receives dry-run
// listings.
func New(resolve providers.Resolver, dl Downloader, arch *archive.Archive, progress ProgressFactory, log Logger, out io.Writer, opts Options) *Job {
	if progress == nil {
		progress = nopProgress{}
	}
	if out == nil {
		out = os.Stdout
	}
	if len(opts.DirectoryFmt) == 0 {
		opts.DirectoryFmt = DefaultDirectoryFmt
	}
	if opts.FilenameFmt == "" {
		opts.FilenameFmt = DefaultFilenameFmt
	}

	return &Job{
		resolve:  resolve,
		dl:       dl,
		archive:  arch,
		progress: progress,
		log:      log,
		out:      out,
		opts:     opts,
	}
}

// chapterPlan is what one chapter's messages resolve to.
type chapterPlan struct {
	source string
	dir    string
	meta   message.Metadata
	items  []downloader.Item
}

// Run resolves rawURL to an extractor and processes its messages.
func (j *Job) Run(ctx context.Context, rawURL string) error {
	ex, err := j.resolve(rawURL)
	if err != nil {
		return err
	}

	msgs, err := ex.Items(ctx)
	if err != nil {
		return fmt.Errorf("%s %s: %w", ex.Category(), ex.Subcategory(), err)
	}

	plan, queue, err := j.plan(rawURL, msgs)
	if err != nil {
		return err
	}

	if plan != nil {
		if err := j.chapter(ctx, plan); err != nil {
			return err
		}
	}

	if len(queue) > 0 {
		return j.queue(ctx, queue)
	}

	return nil
}

func (j *Job) plan(source string, msgs []message.Message) (*chapterPlan, []providers.Chapter, error) {
	var plan *chapterPlan
	var queue []providers.Chapter

	for _, m := range msgs {
		switch m.Kind {
		case message.Version:
			if m.Version != message.SchemaVersion {
				return nil, nil, fmt.Errorf("unsupported message version %d", m.Version)
			}

		case message.Directory:
			dir, err := Directory(j.opts.Output, j.opts.DirectoryFmt, m.Metadata)
			if err != nil {
				return nil, nil, err
			}
			plan = &chapterPlan{source: source, dir: dir, meta: m.Metadata}

		case message.URL:
			if plan == nil {
				return nil, nil, fmt.Errorf("url %s before any directory", m.URL)
			}
			name, err := Filename(j.opts.FilenameFmt, m.Metadata)
			if err != nil {
				return nil, nil, err
			}
			plan.items = append(plan.items, downloader.Item{
				URL:  m.URL,
				Path: filepath.Join(plan.dir, name),
				Key:  archive.Key(m.Metadata),
			})

		case message.Queue:
			queue = append(queue, providers.Chapter{URL: m.URL})

		default:
			return nil, nil, fmt.Errorf("unexpected message %s", m.Kind)
		}
	}

	return plan, queue, nil
}

// queue runs the selected chapters, at most ChapterWorkers at a time. A
// failed chapter does not stop the others.
func (j *Job) queue(ctx context.Context, all []providers.Chapter) error {
	selected := providers.Filter(all, j.opts.Chapter, j.opts.Range, j.opts.List)
	if len(selected) == 0 {
		return fmt.Errorf("no chapters selected out of %d", len(all))
	}
	j.log.Debugf("%d of %d chapters selected\n", len(selected), len(all))

	workers := max(1, j.opts.ChapterWorkers)
	if j.opts.DryRun {
		// listings come out oldest first
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, ch := range selected {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := j.Run(ctx, ch.URL); err != nil {
				j.Stats.FailedChapters.Add(1)
				j.log.Errorf("%s: %v\n", ch.URL, err)

				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}

	return errors.Join(errs...)
}

func (j *Job) chapter(ctx context.Context, p *chapterPlan) error {
	label := chapterLabel(p.meta)

	if j.opts.DryRun {
		var b strings.Builder
		fmt.Fprintf(&b, "%s  [%d pages]\n", p.dir, len(p.items))
		for _, it := range p.items {
			fmt.Fprintf(&b, "    %s\n", filepath.Base(it.Path))
		}

		j.outMu.Lock()
		defer j.outMu.Unlock()
		_, err := io.WriteString(j.out, b.String())
		return err
	}

	if len(p.items) == 0 {
		j.log.Infof("%s %s: no pages found\n", p.meta["manga"], label)
		return nil
	}

	pending, err := j.pending(ctx, p.items)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		j.Stats.SkippedImages.Add(int64(len(p.items)))
		j.log.Infof("%s %s: already downloaded\n", p.meta["manga"], label)
		return nil
	}
	if !j.opts.CBZ {
		j.Stats.SkippedImages.Add(int64(len(p.items) - len(pending)))
	} else {
		// the CBZ is rewritten whole, so every page is needed again
		pending = append([]downloader.Item(nil), p.items...)
	}

	target := p.dir
	if j.opts.CBZ {
		target = p.dir + util.TmpSuffix
		for i := range pending {
			pending[i].Path = filepath.Join(target, filepath.Base(pending[i].Path))
		}
	}

	handle := j.progress.Register("Ch." + label)
	handle.SetTotal(len(pending))

	res, err := j.dl.Download(ctx, pending, p.source, max(1, j.opts.ImageWorkers), handle)
	j.Stats.TotalBytes.Add(res.Bytes)
	j.Stats.SkippedImages.Add(int64(len(res.Skipped)))
	if err != nil {
		if j.opts.CBZ {
			util.CleanupFolder(target)
		}
		return fmt.Errorf("chapter %s: %w", label, err)
	}

	if j.opts.CBZ {
		if err := j.pack(p, target, res.Done); err != nil {
			return err
		}
	}

	if err := j.record(ctx, res.Done); err != nil {
		return err
	}

	j.Stats.TotalChapters.Add(1)
	j.Stats.TotalImages.Add(int64(len(res.Done)))

	return nil
}

// pending drops items the archive already holds.
func (j *Job) pending(ctx context.Context, items []downloader.Item) ([]downloader.Item, error) {
	if j.archive == nil {
		return append([]downloader.Item(nil), items...), nil
	}

	out := make([]downloader.Item, 0, len(items))
	for _, it := range items {
		seen, err := j.archive.Has(ctx, it.Key)
		if err != nil {
			return nil, err
		}
		if seen {
			continue
		}
		out = append(out, it)
	}

	return out, nil
}

func (j *Job) record(ctx context.Context, done []downloader.Item) error {
	if j.archive == nil || len(done) == 0 {
		return nil
	}

	keys := make([]string, 0, len(done))
	for _, it := range done {
		keys = append(keys, it.Key)
	}

	return j.archive.Add(ctx, keys...)
}

func (j *Job) pack(p *chapterPlan, tmp string, done []downloader.Item) error {
	files := make([]string, 0, len(done))
	for _, it := range done {
		files = append(files, it.Path)
	}

	if err := os.MkdirAll(filepath.Dir(p.dir), 0755); err != nil {
		return err
	}

	info := &util.ComicInfo{
		Series:      p.meta["manga"],
		Number:      p.meta["chapter"] + p.meta["chapter-minor"],
		Volume:      p.meta["volume"],
		PageCount:   len(files),
		LanguageISO: p.meta["lang"],
		Web:         p.source,
	}
	if err := util.CreateCBZ(files, p.dir+".cbz", info); err != nil {
		util.CleanupFolder(tmp)
		return err
	}

	if !j.opts.KeepFolders {
		util.CleanupFolder(tmp)
	}

	return nil
}

func chapterLabel(meta message.Metadata) string {
	return meta["chapter"] + meta["chapter-minor"]
}
