package mangapark

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/brogergvhs/parkdl/internal/message"
	"github.com/brogergvhs/parkdl/internal/text"
)

const (
	// zoom=2 is the only layout whose image tags carry width and height.
	zoomQuery = "?zoom=2"

	imageAnchor = ` target="_blank" href="`
	widthAttr   = ` width="`
	heightAttr  = ` _heighth="`
)

// The markers appear in this order on the page; each rule resumes where the
// previous one stopped.
var metadataRules = []text.Rule{
	{Key: "manga-id", Begin: "var _manga_id = '", End: "'"},
	{Key: "chapter-id", Begin: "var _book_id = '", End: "'"},
	{Key: "manga", Begin: "<h2>", End: "</h2>"},
	{Begin: `target="_blank" href="`, End: ""},
	{Key: "count", Begin: `page 1">1 / `, End: "<"},
}

type Image struct {
	URL    string
	Width  string
	Height string
}

type ChapterExtractor struct {
	cfg   Config
	id    ChapterIdentity
	fetch Fetcher
}

func NewChapterExtractor(id ChapterIdentity, cfg Config, f Fetcher) *ChapterExtractor {
	return &ChapterExtractor{cfg: cfg, id: id, fetch: f}
}

func (e *ChapterExtractor) Category() string    { return e.cfg.Category }
func (e *ChapterExtractor) Subcategory() string { return "chapter" }

func (e *ChapterExtractor) URL() string {
	return e.cfg.BaseURL + "/manga/" + e.id.Part + zoomQuery
}

// Metadata builds the chapter metadata from the URL identity and the page.
// A missing marker fails the whole chapter.
func (e *ChapterExtractor) Metadata(page string) (message.Metadata, error) {
	data := message.Metadata{
		"category":      e.cfg.Category,
		"version":       e.id.Version,
		"volume":        e.id.Volume,
		"chapter":       e.id.Chapter,
		"chapter-minor": e.id.ChapterMinor,
		"lang":          e.cfg.Lang,
		"language":      e.cfg.Language,
	}

	if _, err := text.ExtractAll(page, metadataRules, 0, data); err != nil {
		return nil, fmt.Errorf("chapter %s: %w", e.id.Part, err)
	}

	// the heading ends in a "Vol X Ch Y" style suffix
	data["manga"] = text.TruncateAtLastSpace(data["manga"])

	return data, nil
}

// Images scans the page from the start for (url, width, height) triples.
// Width and height are only looked for before the next anchor, and the
// first triple with any marker missing ends the sequence.
func Images(page string) []Image {
	var out []Image
	pos := 0

	for {
		url, next, ok := text.Extract(page, imageAnchor, `"`, pos)
		if !ok {
			return out
		}

		span := page
		if i := strings.Index(page[next:], imageAnchor); i >= 0 {
			span = page[:next+i]
		}

		width, next, ok := text.Extract(span, widthAttr, `"`, next)
		if !ok {
			return out
		}
		height, next, ok := text.Extract(span, heightAttr, `"`, next)
		if !ok {
			return out
		}

		out = append(out, Image{URL: url, Width: width, Height: height})
		pos = next
	}
}

// Records merges each image into a copy of meta, numbering pages from 1.
func Records(meta message.Metadata, images []Image) []message.Metadata {
	out := make([]message.Metadata, 0, len(images))

	for i, img := range images {
		rec := meta.Clone()
		rec["url"] = img.URL
		rec["width"] = img.Width
		rec["height"] = img.Height
		rec["page"] = strconv.Itoa(i + 1)
		text.NameExtFromURL(img.URL, rec)

		out = append(out, rec)
	}

	return out
}

// Parse fetches the chapter page and returns its metadata and page records.
func (e *ChapterExtractor) Parse(ctx context.Context) (message.Metadata, []message.Metadata, error) {
	page, err := e.fetch.GetText(ctx, e.URL())
	if err != nil {
		return nil, nil, err
	}

	meta, err := e.Metadata(page)
	if err != nil {
		return nil, nil, err
	}

	return meta, Records(meta, Images(page)), nil
}

func (e *ChapterExtractor) Items(ctx context.Context) ([]message.Message, error) {
	meta, records, err := e.Parse(ctx)
	if err != nil {
		return nil, err
	}

	msgs := make([]message.Message, 0, len(records)+2)
	msgs = append(msgs, message.NewVersion(), message.NewDirectory(meta))

	for _, rec := range records {
		msgs = append(msgs, message.NewURL(rec["url"], rec))
	}

	return msgs, nil
}
