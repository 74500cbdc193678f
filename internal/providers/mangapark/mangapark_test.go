package mangapark

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/brogergvhs/parkdl/internal/message"
	"github.com/brogergvhs/parkdl/internal/text"
)

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) GetText(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("HTTP 404 for %s", url)
	}
	return page, nil
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Infof(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://park.test"
	return cfg
}

func chapterAnchorHTML(href, title string) string {
	return fmt.Sprintf(`<a class="ch sts sts_1" target="_blank" href="%s">%s</a>`, href, title)
}

func mangaPage(withList bool) string {
	var b strings.Builder
	b.WriteString("<html><body><nav>")
	b.WriteString(chapterAnchorHTML("/manga/demo/s1/c99", "Latest"))
	b.WriteString("</nav>")
	if withList {
		b.WriteString(`<div id="list" class="book-list">`)
	} else {
		b.WriteString(`<div id="other">`)
	}
	b.WriteString(chapterAnchorHTML("/manga/demo/s1/c3", "Ch.3  New"))
	b.WriteString(chapterAnchorHTML("/manga/demo/s1/c2", "Ch.2"))
	b.WriteString(chapterAnchorHTML("/manga/demo/s1/v1/c1.5", "Ch.1.5"))
	b.WriteString("</div></body></html>")
	return b.String()
}

type pageImage struct {
	url, width, height string
	noWidth, noHeight  bool
}

func chapterPage(heading string, images ...pageImage) string {
	var b strings.Builder
	b.WriteString("<html><head><script>var _manga_id = 'M1';\nvar _book_id = 'C1';</script></head><body>")
	b.WriteString("<h2>" + heading + "</h2>")
	for _, img := range images {
		fmt.Fprintf(&b, `<a class="img-link" target="_blank" href="%s"><img class="img" src="%s"`, img.url, img.url)
		if !img.noWidth {
			fmt.Fprintf(&b, ` width="%s"`, img.width)
		}
		if !img.noHeight {
			fmt.Fprintf(&b, ` _heighth="%s"`, img.height)
		}
		b.WriteString("></a>")
	}
	b.WriteString(`<div class="info"><em title="page 1">1 / 12</em></div></body></html>`)
	return b.String()
}

func TestParseChapterURL(t *testing.T) {
	tests := []struct {
		url  string
		want ChapterIdentity
		ok   bool
	}{
		{
			url:  "http://mangapark.me/manga/demo/s1/c3",
			want: ChapterIdentity{Part: "demo/s1/c3", Version: "1", Chapter: "3"},
			ok:   true,
		},
		{
			url:  "https://www.mangapark.me/manga/demo/s2/v4/c10.5",
			want: ChapterIdentity{Part: "demo/s2/v4/c10.5", Version: "2", Volume: "4", Chapter: "10", ChapterMinor: ".5"},
			ok:   true,
		},
		{url: "http://mangapark.me/manga/demo", ok: false},
		{url: "http://example.com/manga/demo/s1/c3", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseChapterURL(tt.url)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseChapterURL(%q) = (%+v, %v), want (%+v, %v)", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNewPicksExtractor(t *testing.T) {
	f := &fakeFetcher{}
	cfg := testConfig()

	tests := []struct {
		url  string
		want string
	}{
		{"mangapark.me/manga/demo/s1/c3", "chapter"},
		{"http://mangapark.me/manga/demo", "manga"},
	}
	for _, tt := range tests {
		ex, err := New(tt.url, cfg, f, nil)
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.url, err)
		}
		if ex.Subcategory() != tt.want {
			t.Errorf("New(%q) subcategory = %q, want %q", tt.url, ex.Subcategory(), tt.want)
		}
	}

	if _, err := New("http://example.com/x", cfg, f, nil); err == nil {
		t.Error("New() accepted an unsupported URL")
	}
}

func TestMangaItemsOldestFirst(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{pages: map[string]string{
		"http://park.test/manga/demo": mangaPage(true),
	}}
	log := &recordingLogger{}

	msgs, err := NewMangaExtractor("demo", cfg, f, log).Items(context.Background())
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}

	want := []string{
		"http://park.test/manga/demo/s1/v1/c1.5",
		"http://park.test/manga/demo/s1/c2",
		"http://park.test/manga/demo/s1/c3",
	}
	if len(msgs) != len(want)+1 {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want)+1)
	}
	if msgs[0].Kind != message.Version || msgs[0].Version != 1 {
		t.Errorf("first message = %+v, want version 1", msgs[0])
	}
	for i, u := range want {
		m := msgs[i+1]
		if m.Kind != message.Queue || m.URL != u {
			t.Errorf("message %d = %s %q, want queue %q", i+1, m.Kind, m.URL, u)
		}
	}

	if len(log.lines) != len(want) {
		t.Errorf("logged %d lines, want %d", len(log.lines), len(want))
	}
}

func TestMangaChaptersTitles(t *testing.T) {
	cfg := testConfig()
	f := &fakeFetcher{pages: map[string]string{
		"http://park.test/manga/demo": mangaPage(true),
	}}

	chapters, err := NewMangaExtractor("demo", cfg, f, nil).Chapters(context.Background())
	if err != nil {
		t.Fatalf("Chapters() error = %v", err)
	}
	if chapters[2].Title != "Ch.3 New" {
		t.Errorf("title = %q, want %q", chapters[2].Title, "Ch.3 New")
	}
	for _, c := range chapters {
		if strings.HasSuffix(c.URL, "/c99") {
			t.Errorf("chapter before the book list was included: %s", c.URL)
		}
	}
}

func TestMangaChaptersTitleEscapedHref(t *testing.T) {
	cfg := testConfig()
	page := `<html><body><div id="list" class="book-list">` +
		chapterAnchorHTML("/manga/demo/s1/c2?a=1&amp;b=2", "Ch.2") +
		chapterAnchorHTML("/manga/demo/s1/c1", "Ch.1") +
		"</div></body></html>"
	f := &fakeFetcher{pages: map[string]string{"http://park.test/manga/demo": page}}

	chapters, err := NewMangaExtractor("demo", cfg, f, nil).Chapters(context.Background())
	if err != nil {
		t.Fatalf("Chapters() error = %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("Chapters() returned %d, want 2", len(chapters))
	}
	if chapters[1].URL != "http://park.test/manga/demo/s1/c2?a=1&amp;b=2" {
		t.Errorf("url = %q, want the raw href", chapters[1].URL)
	}
	if chapters[1].Title != "Ch.2" {
		t.Errorf("title = %q, want %q", chapters[1].Title, "Ch.2")
	}
}

func TestMangaMissingBookList(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"http://park.test/manga/demo": mangaPage(false),
	}}

	msgs, err := NewMangaExtractor("demo", testConfig(), f, nil).Items(context.Background())
	if err == nil {
		t.Fatalf("Items() = %d messages, want error", len(msgs))
	}
	if !strings.Contains(err.Error(), "book-list") {
		t.Errorf("error %q does not name the missing marker", err)
	}
}

func TestChapterMetadataRoundTrip(t *testing.T) {
	id, _ := ParseChapterURL("mangapark.me/manga/demo/s1/c5")
	ex := NewChapterExtractor(id, testConfig(), nil)

	page := chapterPage("Demo Manga", pageImage{url: "/x", width: "1", height: "2"})
	meta, err := ex.Metadata(page)
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}

	want := map[string]string{
		"category":      "mangapark",
		"version":       "1",
		"volume":        "",
		"chapter":       "5",
		"chapter-minor": "",
		"lang":          "en",
		"language":      "English",
		"manga-id":      "M1",
		"chapter-id":    "C1",
		"manga":         "Demo",
		"count":         "12",
	}
	for k, v := range want {
		if got, ok := meta[k]; !ok || got != v {
			t.Errorf("meta[%q] = %q (present %v), want %q", k, got, ok, v)
		}
	}
}

func TestChapterMetadataTitle(t *testing.T) {
	id, _ := ParseChapterURL("mangapark.me/manga/demo/s1/c5")
	ex := NewChapterExtractor(id, testConfig(), nil)

	tests := map[string]string{
		"Example Title Vol.2 Ch.5": "Example Title Vol.2",
		"Oneword":                  "",
	}
	for heading, want := range tests {
		meta, err := ex.Metadata(chapterPage(heading, pageImage{url: "/x"}))
		if err != nil {
			t.Fatalf("Metadata() error = %v", err)
		}
		if meta["manga"] != want {
			t.Errorf("manga for heading %q = %q, want %q", heading, meta["manga"], want)
		}
	}
}

func TestChapterMetadataMissingMarker(t *testing.T) {
	id, _ := ParseChapterURL("mangapark.me/manga/demo/s1/c5")
	ex := NewChapterExtractor(id, testConfig(), nil)

	page := chapterPage("Demo Manga", pageImage{url: "/x"})
	tests := map[string]string{
		"no manga id": strings.Replace(page, "_manga_id", "_other_id", 1),
		"no count":    strings.Replace(page, "1 / 12", "12", 1),
		"reordered":   strings.Replace(strings.Replace(page, "<h2>Demo Manga</h2>", "", 1), "<head>", "<head><h2>Demo Manga</h2>", 1),
	}

	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			meta, err := ex.Metadata(p)
			if !errors.Is(err, text.ErrMissingMarker) {
				t.Fatalf("Metadata() = (%v, %v), want ErrMissingMarker", meta, err)
			}
		})
	}
}

func TestImages(t *testing.T) {
	t.Run("all complete", func(t *testing.T) {
		page := chapterPage("Demo Manga",
			pageImage{url: "http://img.test/1.jpg", width: "800", height: "1200"},
			pageImage{url: "http://img.test/2.png", width: "801", height: "1201"},
			pageImage{url: "http://img.test/3.jpg", width: "802", height: "1202"},
		)
		got := Images(page)
		if len(got) != 3 {
			t.Fatalf("Images() returned %d, want 3", len(got))
		}
		want := Image{URL: "http://img.test/2.png", Width: "801", Height: "1201"}
		if got[1] != want {
			t.Errorf("Images()[1] = %+v, want %+v", got[1], want)
		}
	})

	t.Run("last missing width", func(t *testing.T) {
		page := chapterPage("Demo Manga",
			pageImage{url: "http://img.test/1.jpg", width: "800", height: "1200"},
			pageImage{url: "http://img.test/2.jpg", width: "801", height: "1201"},
			pageImage{url: "http://img.test/3.jpg", noWidth: true, height: "1202"},
		)
		if got := Images(page); len(got) != 2 {
			t.Errorf("Images() returned %d, want 2", len(got))
		}
	})

	t.Run("middle missing width", func(t *testing.T) {
		page := chapterPage("Demo Manga",
			pageImage{url: "http://img.test/1.jpg", width: "800", height: "1200"},
			pageImage{url: "http://img.test/2.jpg", noWidth: true, height: "1201"},
			pageImage{url: "http://img.test/3.jpg", width: "802", height: "1202"},
		)
		got := Images(page)
		want := []Image{{URL: "http://img.test/1.jpg", Width: "800", Height: "1200"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Images() = %+v, want %+v", got, want)
		}
	})

	t.Run("middle missing height", func(t *testing.T) {
		page := chapterPage("Demo Manga",
			pageImage{url: "http://img.test/1.jpg", width: "800", height: "1200"},
			pageImage{url: "http://img.test/2.jpg", width: "801", noHeight: true},
			pageImage{url: "http://img.test/3.jpg", width: "802", height: "1202"},
		)
		if got := Images(page); len(got) != 1 {
			t.Errorf("Images() returned %d, want 1: %+v", len(got), got)
		}
	})

	t.Run("last missing height", func(t *testing.T) {
		page := chapterPage("Demo Manga",
			pageImage{url: "http://img.test/1.jpg", width: "800", height: "1200"},
			pageImage{url: "http://img.test/2.jpg", width: "801", noHeight: true},
		)
		if got := Images(page); len(got) != 1 {
			t.Errorf("Images() returned %d, want 1", len(got))
		}
	})

	t.Run("empty href kept", func(t *testing.T) {
		page := chapterPage("Demo Manga",
			pageImage{url: "", width: "800", height: "1200"},
			pageImage{url: "http://img.test/2.jpg", width: "801", height: "1201"},
		)
		got := Images(page)
		if len(got) != 2 {
			t.Fatalf("Images() returned %d, want 2", len(got))
		}
		want := Image{URL: "", Width: "800", Height: "1200"}
		if got[0] != want {
			t.Errorf("Images()[0] = %+v, want %+v", got[0], want)
		}
	})

	t.Run("no anchors", func(t *testing.T) {
		if got := Images("<html></html>"); len(got) != 0 {
			t.Errorf("Images() = %v, want empty", got)
		}
	})
}

func TestChapterItems(t *testing.T) {
	cfg := testConfig()
	page := chapterPage("Demo Manga Vol.1",
		pageImage{url: "http://img.test/a/001.JPG", width: "800", height: "1200"},
		pageImage{url: "http://img.test/a/002.png", width: "801", height: "1201"},
	)
	f := &fakeFetcher{pages: map[string]string{
		"http://park.test/manga/demo/s1/v2/c7.5?zoom=2": page,
	}}

	id, ok := ParseChapterURL("http://mangapark.me/manga/demo/s1/v2/c7.5")
	if !ok {
		t.Fatal("chapter URL did not match")
	}
	ex := NewChapterExtractor(id, cfg, f)

	msgs, err := ex.Items(context.Background())
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}
	if msgs[1].Kind != message.Directory || msgs[1].Metadata["manga"] != "Demo Manga" {
		t.Errorf("directory message = %+v", msgs[1])
	}
	if _, ok := msgs[1].Metadata["page"]; ok {
		t.Error("directory metadata carries a page field")
	}

	required := []string{
		"category", "version", "volume", "chapter", "chapter-minor", "lang", "language",
		"manga-id", "chapter-id", "manga", "count", "url", "width", "height", "page",
	}
	for i, m := range msgs[2:] {
		if m.Kind != message.URL {
			t.Fatalf("message %d kind = %s, want url", i+2, m.Kind)
		}
		for _, k := range required {
			if _, ok := m.Metadata[k]; !ok {
				t.Errorf("record %d is missing %q", i, k)
			}
		}
		if m.Metadata["page"] != fmt.Sprint(i+1) {
			t.Errorf("record %d page = %q, want %d", i, m.Metadata["page"], i+1)
		}
		if m.URL != m.Metadata["url"] {
			t.Errorf("message URL %q differs from record url %q", m.URL, m.Metadata["url"])
		}
	}

	first := msgs[2].Metadata
	if first["extension"] != "jpg" || first["name"] != "001" {
		t.Errorf("name/extension = %q/%q, want 001/jpg", first["name"], first["extension"])
	}
	if first["volume"] != "2" || first["chapter-minor"] != ".5" {
		t.Errorf("volume/minor = %q/%q, want 2/.5", first["volume"], first["chapter-minor"])
	}
}

func TestChapterItemsIdempotent(t *testing.T) {
	cfg := testConfig()
	page := chapterPage("Demo Manga Vol.1",
		pageImage{url: "http://img.test/1.jpg", width: "1", height: "2"},
	)
	f := &fakeFetcher{pages: map[string]string{
		"http://park.test/manga/demo/s1/c1?zoom=2": page,
	}}
	id, _ := ParseChapterURL("mangapark.me/manga/demo/s1/c1")
	ex := NewChapterExtractor(id, cfg, f)

	a, errA := ex.Items(context.Background())
	b, errB := ex.Items(context.Background())
	if errA != nil || errB != nil {
		t.Fatalf("Items() errors = %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two runs differ:\n%v\n%v", a, b)
	}
	if len(f.calls) != 2 {
		t.Errorf("fetched %d times, want 2", len(f.calls))
	}
}

func TestChapterFetchError(t *testing.T) {
	id, _ := ParseChapterURL("mangapark.me/manga/demo/s1/c1")
	ex := NewChapterExtractor(id, testConfig(), &fakeFetcher{})

	if _, err := ex.Items(context.Background()); err == nil {
		t.Error("Items() succeeded without a page")
	}
}
