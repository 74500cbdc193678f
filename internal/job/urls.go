package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brogergvhs/parkdl/internal/message"
	"github.com/brogergvhs/parkdl/internal/providers"
)

type jsonMessage struct {
	Kind     string            `json:"kind"`
	Version  int               `json:"version,omitempty"`
	URL      string            `json:"url,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PrintURLs writes the page URLs reachable from rawURL, following queued
// chapters one at a time in queue order. With asJSON every message is
// written as one JSON object per line instead.
func (j *Job) PrintURLs(ctx context.Context, rawURL string, asJSON bool) error {
	ex, err := j.resolve(rawURL)
	if err != nil {
		return err
	}

	msgs, err := ex.Items(ctx)
	if err != nil {
		return fmt.Errorf("%s %s: %w", ex.Category(), ex.Subcategory(), err)
	}

	enc := json.NewEncoder(j.out)
	var queue []providers.Chapter

	for _, m := range msgs {
		if asJSON {
			if err := enc.Encode(jsonMessage{Kind: m.Kind.String(), Version: m.Version, URL: m.URL, Metadata: m.Metadata}); err != nil {
				return err
			}
		} else if m.Kind == message.URL {
			fmt.Fprintln(j.out, m.URL)
		}

		if m.Kind == message.Queue {
			queue = append(queue, providers.Chapter{URL: m.URL})
		}
	}

	if len(queue) == 0 {
		return nil
	}

	for _, ch := range providers.Filter(queue, j.opts.Chapter, j.opts.Range, j.opts.List) {
		if err := j.PrintURLs(ctx, ch.URL, asJSON); err != nil {
			return err
		}
	}

	return nil
}
