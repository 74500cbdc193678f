package mangapark

import (
	"fmt"
	"regexp"

	"github.com/brogergvhs/parkdl/internal/providers"
)

var (
	chapterPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?mangapark\.me/manga/([^/]+/s(\d+)(?:/v(\d+))?/c(\d+)(\.\d+)?)`)
	mangaPattern   = regexp.MustCompile(`(?:https?://)?(?:www\.)?mangapark\.me/manga/([^/?#]+)`)
)

// ChapterIdentity is what a chapter URL says about the chapter. Volume and
// ChapterMinor are empty when the URL has none.
type ChapterIdentity struct {
	Part         string // everything after /manga/
	Version      string
	Volume       string
	Chapter      string
	ChapterMinor string // includes the leading dot, e.g. ".5"
}

func ParseChapterURL(raw string) (ChapterIdentity, bool) {
	m := chapterPattern.FindStringSubmatch(raw)
	if m == nil {
		return ChapterIdentity{}, false
	}

	return ChapterIdentity{
		Part:         m[1],
		Version:      m[2],
		Volume:       m[3],
		Chapter:      m[4],
		ChapterMinor: m[5],
	}, true
}

func ParseMangaURL(raw string) (string, bool) {
	m := mangaPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// Match reports whether either extractor accepts raw.
func Match(raw string) bool {
	return chapterPattern.MatchString(raw) || mangaPattern.MatchString(raw)
}

// New returns the chapter extractor for chapter URLs and the manga
// extractor for index URLs. Chapter URLs are checked first since the manga
// pattern matches them too.
func New(raw string, cfg Config, f Fetcher, log Logger) (providers.Extractor, error) {
	if id, ok := ParseChapterURL(raw); ok {
		return NewChapterExtractor(id, cfg, f), nil
	}
	if slug, ok := ParseMangaURL(raw); ok {
		return NewMangaExtractor(slug, cfg, f, log), nil
	}

	return nil, fmt.Errorf("%w: %s", providers.ErrUnsupportedURL, raw)
}

// Resolver binds New to one configuration.
func Resolver(cfg Config, f Fetcher, log Logger) providers.Resolver {
	return func(raw string) (providers.Extractor, error) {
		return New(raw, cfg, f, log)
	}
}
