package job

import (
	"path/filepath"
	"testing"
)

func TestFormat(t *testing.T) {
	meta := map[string]string{
		"category":      "mangapark",
		"manga":         "Demo",
		"chapter":       "5",
		"chapter-minor": ".5",
		"page":          "12",
		"extension":     "jpg",
	}

	tests := []struct {
		tmpl    string
		want    string
		wantErr bool
	}{
		{tmpl: DefaultFilenameFmt, want: "Demo_c005.5_012.jpg"},
		{tmpl: "c{chapter:>03}{chapter-minor}", want: "c005.5"},
		{tmpl: "{page:<4}|", want: "12  |"},
		{tmpl: "{page:*^6}", want: "**12**"},
		{tmpl: "{page:>1}", want: "12"},
		{tmpl: "{{literal}}", want: "{literal}"},
		{tmpl: "{missing}", wantErr: true},
		{tmpl: "{manga", wantErr: true},
		{tmpl: "{page:>x}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := Format(tt.tmpl, meta)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Format() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDirectory(t *testing.T) {
	meta := map[string]string{
		"category":      "mangapark",
		"manga":         "Fate/Zero: Vol",
		"chapter":       "7",
		"chapter-minor": "",
	}

	got, err := Directory("out", DefaultDirectoryFmt, meta)
	if err != nil {
		t.Fatalf("Directory() error = %v", err)
	}
	want := filepath.Join("out", "mangapark", "Fate_Zero_ Vol", "c007")
	if got != want {
		t.Errorf("Directory() = %q, want %q", got, want)
	}
}

func TestSanitizePath(t *testing.T) {
	tests := map[string]string{
		"a/b":    "a_b",
		"  x.. ": "x",
		"":       "_",
		"..":     "_",
	}
	for in, want := range tests {
		if got := SanitizePath(in); got != want {
			t.Errorf("SanitizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
