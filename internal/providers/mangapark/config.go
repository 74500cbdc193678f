package mangapark

import "context"

// Config is shared read-only by both extractors.
type Config struct {
	Category string
	BaseURL  string
	Lang     string
	Language string
}

func DefaultConfig() Config {
	return Config{
		Category: "mangapark",
		BaseURL:  "http://mangapark.me",
		Lang:     "en",
		Language: "English",
	}
}

// Fetcher performs the single GET each extractor issues.
type Fetcher interface {
	GetText(ctx context.Context, url string) (string, error)
}

type Logger interface {
	Infof(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any) {}

func orNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
