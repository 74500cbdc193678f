package downloader

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/brogergvhs/parkdl/internal/ui"
)

// Item is one file to fetch. Key identifies it in the download archive.
type Item struct {
	URL  string
	Path string
	Key  string
}

type Result struct {
	Done    []Item
	Skipped []Item
	Bytes   int64
}

type Downloader struct {
	client     *http.Client
	debug      bool
	skipBroken bool
	allowExt   []string
	attempts   int
	backoff    time.Duration
}

func New(c *http.Client, debug bool, skipBroken bool, allowExt []string) *Downloader {
	exts := make([]string, 0, len(allowExt))
	for _, e := range allowExt {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts = append(exts, e)
		}
	}

	return &Downloader{
		client:     c,
		debug:      debug,
		skipBroken: skipBroken,
		allowExt:   exts,
		attempts:   3,
		backoff:    time.Second,
	}
}

func (d *Downloader) allowed(path string) bool {
	if len(d.allowExt) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	return slices.Contains(d.allowExt, ext)
}

type chapterState struct {
	mu          sync.Mutex
	doneImages  int
	totalImages int
	doneBytes   int64
}

// Download fetches items with up to maxParallel workers. Unless the
// downloader skips broken images, any failed item fails the call; the
// files written so far are still reported.
func (d *Downloader) Download(
	ctx context.Context,
	items []Item,
	referer string,
	maxParallel int,
	ph ui.Progress,
) (Result, error) {

	total := len(items)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	cs := &chapterState{totalImages: total}
	ph.Update(0, total, 0)

	var res Result
	done := make([]bool, total)
	errs := make([]error, 0, 4)

	advance := func() {
		cs.doneImages++
		ph.Update(cs.doneImages, cs.totalImages, cs.doneBytes)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			it := items[i]

			if !d.allowed(it.Path) {
				cs.mu.Lock()
				res.Skipped = append(res.Skipped, it)
				advance()
				cs.mu.Unlock()
				continue
			}

			var last int64
			progress := func(n int64) {
				delta := n - last
				if delta <= 0 {
					return
				}

				last = n
				cs.mu.Lock()
				cs.doneBytes += delta
				ph.Update(cs.doneImages, cs.totalImages, cs.doneBytes)
				cs.mu.Unlock()
			}

			err := d.downloadWithRetry(ctx, it.URL, it.Path, referer, progress)

			cs.mu.Lock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(it.Path), err))
			} else {
				done[i] = true
			}
			advance()
			cs.mu.Unlock()
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

	var ctxErr error
feed:
	for i := range items {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	ph.MarkDone()

	for i, ok := range done {
		if ok {
			res.Done = append(res.Done, items[i])
		}
	}
	res.Bytes = cs.doneBytes

	if ctxErr != nil {
		return res, ctxErr
	}

	if len(errs) > 0 && !d.skipBroken {
		return res, fmt.Errorf("failed %d/%d images (use --skip-broken to continue): %w", len(errs), total, errs[0])
	}

	return res, nil
}

func (d *Downloader) downloadWithRetry(
	ctx context.Context,
	url string,
	output string,
	referer string,
	progress func(done int64),
) error {
	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		err = d.download(ctx, url, output, referer, progress)
		if err == nil {
			return nil
		}
		if attempt == d.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * d.backoff):
		}
	}

	return err
}

func (d *Downloader) download(
	ctx context.Context,
	u, output, referer string,
	progress func(done int64),
) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := mime.ParseMediaType(ct); !strings.HasPrefix(mt, "image/") {
			return fmt.Errorf("unexpected MIME: %s", ct)
		}
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}

	// pages stay under .part until complete
	part := output + ".part"
	f, err := os.Create(part)
	if err != nil {
		return err
	}

	written, err := copyWithProgress(f, resp.Body, progress)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(part)
		return err
	}

	if progress != nil && resp.ContentLength > 0 && written < resp.ContentLength {
		progress(resp.ContentLength)
	}

	return os.Rename(part, output)
}
