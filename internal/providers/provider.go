package providers

import (
	"context"
	"errors"

	"github.com/brogergvhs/parkdl/internal/message"
)

var ErrUnsupportedURL = errors.New("unsupported URL")

type Chapter struct {
	URL   string
	Title string
}

// Extractor turns one matched URL into a message stream. Items fetches
// afresh on every call.
type Extractor interface {
	Category() string
	Subcategory() string
	Items(ctx context.Context) ([]message.Message, error)
}

// Resolver picks the extractor for a URL or returns ErrUnsupportedURL.
type Resolver func(rawURL string) (Extractor, error)
