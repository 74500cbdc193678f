package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/parkdl/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress is what a download reports to while it runs.
type Progress interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
}

type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager(out io.Writer) *MPBProgressManager {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

func (pm *MPBProgressManager) Close() {
	pm.p.Wait()
}

func (pm *MPBProgressManager) Register(prefix string) Progress {
	h := &ProgressHandle{
		pm:     pm,
		prefix: prefix,
	}
	h.initBar()
	return h
}

type ProgressHandle struct {
	pm     *MPBProgressManager
	prefix string
	bar    *mpb.Bar

	total int64
	bytes int64

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.start = time.Now()

	h.bar = h.pm.p.New(
		0,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(atomic.LoadInt64(&h.bytes))
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

func (h *ProgressHandle) SetTotal(total int) {
	if h.final.Load() {
		return
	}

	atomic.StoreInt64(&h.total, int64(total))
	h.bar.SetTotal(int64(total), false)
}

func (h *ProgressHandle) Update(done, total int, bytes int64) {
	if h.final.Load() {
		return
	}

	if total > 0 {
		atomic.StoreInt64(&h.total, int64(total))
		h.bar.SetTotal(int64(total), false)
	}

	atomic.StoreInt64(&h.bytes, bytes)
	h.bar.SetCurrent(int64(done))
}

func (h *ProgressHandle) MarkDone() {
	if h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	total := atomic.LoadInt64(&h.total)
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}

// NopProgress discards updates, for dry runs and tests.
type NopProgress struct{}

func (NopProgress) SetTotal(int)           {}
func (NopProgress) Update(int, int, int64) {}
func (NopProgress) MarkDone()              {}
