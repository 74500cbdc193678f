// Package message defines the event stream extractors hand to a job.
package message

import "fmt"

// SchemaVersion is the only protocol version extractors emit.
const SchemaVersion = 1

type Kind int

const (
	Version Kind = iota + 1
	Directory
	Queue
	URL
)

func (k Kind) String() string {
	switch k {
	case Version:
		return "version"
	case Directory:
		return "directory"
	case Queue:
		return "queue"
	case URL:
		return "url"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Metadata is the named string fields attached to a chapter or a page.
type Metadata map[string]string

func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

type Message struct {
	Kind     Kind
	Version  int
	URL      string
	Metadata Metadata
}

func NewVersion() Message {
	return Message{Kind: Version, Version: SchemaVersion}
}

func NewDirectory(meta Metadata) Message {
	return Message{Kind: Directory, Metadata: meta}
}

func NewQueue(url string) Message {
	return Message{Kind: Queue, URL: url}
}

func NewURL(url string, meta Metadata) Message {
	return Message{Kind: URL, URL: url, Metadata: meta}
}
