package job

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

const DefaultFilenameFmt = "{manga}_c{chapter:>03}{chapter-minor}_{page:>03}.{extension}"

var DefaultDirectoryFmt = []string{"{category}", "{manga}", "c{chapter:>03}{chapter-minor}"}

// Format fills a template such as "c{chapter:>03}" from meta. A field may
// carry an alignment spec: [[fill]align][0][width] with align one of <, >
// or ^. "{{" and "}}" are literal braces.
func Format(tmpl string, meta map[string]string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch {
		case c == '{' && strings.HasPrefix(tmpl[i:], "{{"):
			b.WriteByte('{')
			i += 2
		case c == '}' && strings.HasPrefix(tmpl[i:], "}}"):
			b.WriteByte('}')
			i += 2
		case c == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("format %q: unclosed field at %d", tmpl, i)
			}
			field := tmpl[i+1 : i+end]

			key, spec, _ := strings.Cut(field, ":")
			val, ok := meta[key]
			if !ok {
				return "", fmt.Errorf("format %q: unknown field %q", tmpl, key)
			}

			out, err := applySpec(val, spec)
			if err != nil {
				return "", fmt.Errorf("format %q: %w", tmpl, err)
			}
			b.WriteString(out)
			i += end + 1
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

func isAlign(r rune) bool {
	return r == '<' || r == '>' || r == '^'
}

func applySpec(val, spec string) (string, error) {
	if spec == "" {
		return val, nil
	}

	fill, align := ' ', '<'
	explicitFill := false
	rest := spec

	first, n := utf8.DecodeRuneInString(rest)
	if second, m := utf8.DecodeRuneInString(rest[n:]); m > 0 && isAlign(second) {
		fill, align, explicitFill = first, second, true
		rest = rest[n+m:]
	} else if isAlign(first) {
		align = first
		rest = rest[n:]
	}

	if strings.HasPrefix(rest, "0") && !explicitFill {
		fill = '0'
		rest = rest[1:]
	}

	if rest == "" {
		return val, nil
	}
	width, err := strconv.Atoi(rest)
	if err != nil || width < 0 {
		return "", fmt.Errorf("bad format spec %q", spec)
	}

	pad := width - utf8.RuneCountInString(val)
	if pad <= 0 {
		return val, nil
	}
	fillStr := string(fill)

	switch align {
	case '>':
		return strings.Repeat(fillStr, pad) + val, nil
	case '^':
		left := pad / 2
		return strings.Repeat(fillStr, left) + val + strings.Repeat(fillStr, pad-left), nil
	default:
		return val + strings.Repeat(fillStr, pad), nil
	}
}

var pathReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizePath makes one formatted value safe as a single path segment.
func SanitizePath(s string) string {
	s = pathReplacer.Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ". ")
	if s == "" {
		return "_"
	}

	return s
}

// Directory joins the formatted, sanitized segments below output.
func Directory(output string, segments []string, meta map[string]string) (string, error) {
	parts := []string{output}
	for _, seg := range segments {
		v, err := Format(seg, meta)
		if err != nil {
			return "", err
		}
		parts = append(parts, SanitizePath(v))
	}

	return filepath.Join(parts...), nil
}

// Filename formats one page's file name.
func Filename(tmpl string, meta map[string]string) (string, error) {
	v, err := Format(tmpl, meta)
	if err != nil {
		return "", err
	}

	return SanitizePath(v), nil
}
