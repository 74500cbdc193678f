package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/parkdl/internal/ui"
)

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Referer") != "http://park.test/chapter" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("img:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestDownloader(c *http.Client, skipBroken bool, allow []string) *Downloader {
	d := New(c, false, skipBroken, allow)
	d.attempts = 2
	d.backoff = time.Millisecond
	return d
}

func TestDownload(t *testing.T) {
	srv := imageServer(t)
	dir := t.TempDir()

	items := []Item{
		{URL: srv.URL + "/1.jpg", Path: filepath.Join(dir, "c001", "p001.jpg")},
		{URL: srv.URL + "/2.jpg", Path: filepath.Join(dir, "c001", "p002.jpg")},
		{URL: srv.URL + "/3.gif", Path: filepath.Join(dir, "c001", "p003.gif")},
	}

	d := newTestDownloader(srv.Client(), false, []string{"jpg", ".PNG"})
	res, err := d.Download(context.Background(), items, "http://park.test/chapter", 2, ui.NopProgress{})
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if len(res.Done) != 2 || len(res.Skipped) != 1 {
		t.Fatalf("done=%d skipped=%d, want 2/1", len(res.Done), len(res.Skipped))
	}
	if res.Done[0].Path != items[0].Path {
		t.Errorf("results not in item order: %v", res.Done)
	}

	data, err := os.ReadFile(items[1].Path)
	if err != nil || string(data) != "img:/2.jpg" {
		t.Errorf("page 2 = %q, %v", data, err)
	}
	if _, err := os.Stat(items[1].Path + ".part"); !os.IsNotExist(err) {
		t.Error("partial file left behind")
	}
	if res.Bytes == 0 {
		t.Error("no bytes counted")
	}
}

func TestDownloadBroken(t *testing.T) {
	srv := imageServer(t)

	tests := []struct {
		name       string
		skipBroken bool
		wantErr    bool
	}{
		{"fails chapter", false, true},
		{"skip broken", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			items := []Item{
				{URL: srv.URL + "/1.jpg", Path: filepath.Join(dir, "p001.jpg")},
				{URL: srv.URL + "/missing.jpg", Path: filepath.Join(dir, "p002.jpg")},
			}

			d := newTestDownloader(srv.Client(), tt.skipBroken, nil)
			res, err := d.Download(context.Background(), items, "http://park.test/chapter", 1, ui.NopProgress{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Download() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(res.Done) != 1 {
				t.Errorf("done = %d, want 1", len(res.Done))
			}
		})
	}
}

func TestDownloadRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>blocked</html>"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "p001.jpg")
	d := newTestDownloader(srv.Client(), false, nil)
	_, err := d.Download(context.Background(), []Item{{URL: srv.URL + "/1.jpg", Path: path}}, "", 1, ui.NopProgress{})
	if err == nil {
		t.Fatal("Download() accepted an HTML response")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file written for rejected response")
	}
}
