// Package text scans unstructured page text between literal delimiters.
//
// Every scan takes a start offset and returns the offset right after the
// closing delimiter, so consecutive scans never re-match earlier content.
package text

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var ErrMissingMarker = errors.New("marker not found")

// MarkerError names the delimiter a required scan could not find.
type MarkerError struct {
	Marker string
	Pos    int
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("%v: %q (from offset %d)", ErrMissingMarker, e.Marker, e.Pos)
}

func (e *MarkerError) Unwrap() error {
	return ErrMissingMarker
}

// Extract returns the text between begin and end, searching from pos.
// On a miss ok is false and next equals pos.
func Extract(s, begin, end string, pos int) (value string, next int, ok bool) {
	if pos < 0 || pos > len(s) {
		return "", pos, false
	}

	i := strings.Index(s[pos:], begin)
	if i < 0 {
		return "", pos, false
	}
	first := pos + i + len(begin)

	j := strings.Index(s[first:], end)
	if j < 0 {
		return "", pos, false
	}
	last := first + j

	return s[first:last], last + len(end), true
}

// Index returns the offset of marker at or after pos, or a *MarkerError.
func Index(s, marker string, pos int) (int, error) {
	if pos >= 0 && pos <= len(s) {
		if i := strings.Index(s[pos:], marker); i >= 0 {
			return pos + i, nil
		}
	}

	return pos, &MarkerError{Marker: marker, Pos: pos}
}

// ExtractIter collects every capture from pos until the first miss.
func ExtractIter(s, begin, end string, pos int) []string {
	var out []string
	for {
		v, next, ok := Extract(s, begin, end, pos)
		if !ok {
			return out
		}
		out = append(out, v)
		pos = next
	}
}

// Rule is one step of ExtractAll. An empty Key consumes the match
// without storing it.
type Rule struct {
	Key   string
	Begin string
	End   string
}

// ExtractAll runs rules in order over a shared cursor. values is only
// written when every rule matched.
func ExtractAll(s string, rules []Rule, pos int, values map[string]string) (int, error) {
	found := make(map[string]string, len(rules))

	for _, r := range rules {
		v, next, ok := Extract(s, r.Begin, r.End, pos)
		if !ok {
			return pos, &MarkerError{Marker: r.Begin, Pos: pos}
		}
		if r.Key != "" {
			found[r.Key] = v
		}
		pos = next
	}

	for k, v := range found {
		values[k] = v
	}

	return pos, nil
}

// NameExtFromURL stores filename, name and extension of the URL's last
// path segment into values.
func NameExtFromURL(raw string, values map[string]string) {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if un, err := url.PathUnescape(raw); err == nil {
		p = un
	}

	filename := path.Base(p)
	if filename == "." || filename == "/" {
		filename = ""
	}

	ext := path.Ext(filename)
	values["filename"] = filename
	values["name"] = strings.TrimSuffix(filename, ext)
	values["extension"] = strings.ToLower(strings.TrimPrefix(ext, "."))
}

// TruncateAtLastSpace drops everything from the last space on. Without a
// space the result is empty.
func TruncateAtLastSpace(s string) string {
	i := strings.LastIndex(s, " ")
	if i < 0 {
		return ""
	}

	return s[:i]
}
