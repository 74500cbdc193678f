package mangapark

import (
	"context"
	"fmt"
	"html"
	"slices"

	"github.com/brogergvhs/parkdl/internal/message"
	"github.com/brogergvhs/parkdl/internal/providers"
	"github.com/brogergvhs/parkdl/internal/text"
)

const (
	bookListMarker = `<div id="list" class="book-list">`
	chapterAnchor  = `<a class="ch sts sts_1" target="_blank" href="`
)

type MangaExtractor struct {
	cfg   Config
	slug  string
	fetch Fetcher
	log   Logger
}

func NewMangaExtractor(slug string, cfg Config, f Fetcher, log Logger) *MangaExtractor {
	return &MangaExtractor{
		cfg:   cfg,
		slug:  slug,
		fetch: f,
		log:   orNop(log),
	}
}

func (e *MangaExtractor) Category() string    { return e.cfg.Category }
func (e *MangaExtractor) Subcategory() string { return "manga" }

func (e *MangaExtractor) URL() string {
	return e.cfg.BaseURL + "/manga/" + e.slug
}

// ChapterRefs returns the chapter hrefs after the book-list marker, oldest
// first. Links before the marker are ignored.
func ChapterRefs(page string) ([]string, error) {
	pos, err := text.Index(page, bookListMarker, 0)
	if err != nil {
		return nil, err
	}

	refs := text.ExtractIter(page, chapterAnchor, `"`, pos)
	slices.Reverse(refs)

	return refs, nil
}

// Chapters fetches the index page and returns its chapters oldest first.
func (e *MangaExtractor) Chapters(ctx context.Context) ([]providers.Chapter, error) {
	page, err := e.fetch.GetText(ctx, e.URL())
	if err != nil {
		return nil, err
	}

	refs, err := ChapterRefs(page)
	if err != nil {
		return nil, fmt.Errorf("manga %s: %w", e.slug, err)
	}

	titles := ChapterTitles(page)

	out := make([]providers.Chapter, 0, len(refs))
	for _, ref := range refs {
		out = append(out, providers.Chapter{
			URL:   e.cfg.BaseURL + ref,
			Title: titles[html.UnescapeString(ref)],
		})
	}

	return out, nil
}

func (e *MangaExtractor) Items(ctx context.Context) ([]message.Message, error) {
	chapters, err := e.Chapters(ctx)
	if err != nil {
		return nil, err
	}

	msgs := make([]message.Message, 0, len(chapters)+1)
	msgs = append(msgs, message.NewVersion())

	for _, c := range chapters {
		e.log.Infof("%s\n", c.URL)
		msgs = append(msgs, message.NewQueue(c.URL))
	}

	return msgs, nil
}
