// Package scripture serves verse ranges out of a compiled text stream.
package scripture

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cache"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/internal/osis"
)

// Bible is one compiled stream of a version: the flat content plus the byte
// offsets where each verse starts and ends.
type Bible struct {
	version string
	content string
	starts  map[bible.VerseID]int
	ends    map[bible.VerseID]int
	isHTML  bool

	results cache.Cache[[2]bible.VerseID, string]
}

// New wraps a compiled stream. The maps are used as given and must not be
// modified afterwards.
func New(version, content string, starts, ends map[bible.VerseID]int, isHTML bool) *Bible {
	return &Bible{
		version: version,
		content: content,
		starts:  starts,
		ends:    ends,
		isHTML:  isHTML,
		results: cache.NewUnbounded[[2]bible.VerseID, string](),
	}
}

// FromStream wraps a stream produced by osis.Parser.Compile.
func FromStream(version string, s *osis.Stream) *Bible {
	return New(version, s.Content, s.Starts, s.Ends, s.Kind.IsHTML())
}

// Version returns the version the stream was compiled from.
func (b *Bible) Version() string { return b.version }

// IsHTML reports whether the content is markup.
func (b *Bible) IsHTML() bool { return b.isHTML }

// Len returns the content length in bytes.
func (b *Bible) Len() int { return len(b.content) }

// Scripture returns the text from the start of start to the end of end.
// A zero end means start alone. HTML streams are normalized with CleanHTML.
func (b *Bible) Scripture(start, end bible.VerseID) (string, error) {
	if !start.IsValid() {
		return "", errors.NewInvalidVerse(int(start), fmt.Sprintf("start verse id (%d) is not a valid verse id", int(start)))
	}
	if end == 0 {
		end = start
	}
	if !end.IsValid() {
		return "", errors.NewInvalidVerse(int(end), fmt.Sprintf("end verse id (%d) is not a valid verse id", int(end)))
	}

	return cache.GetOrCompute(b.results, [2]bible.VerseID{start, end}, func() (string, error) {
		from, ok := b.starts[start]
		if !ok {
			return "", errors.NewNotFound("verse", fmt.Sprintf("%s %d", b.version, int(start)))
		}
		to, ok := b.ends[end]
		if !ok {
			return "", errors.NewNotFound("verse", fmt.Sprintf("%s %d", b.version, int(end)))
		}
		if to < from || to > len(b.content) {
			return "", &errors.ValidationError{
				Field:   "range",
				Value:   fmt.Sprintf("%d-%d", int(start), int(end)),
				Message: "end verse precedes start verse",
			}
		}

		text := strings.TrimSpace(b.content[from:to])
		if b.isHTML {
			return CleanHTML(text), nil
		}
		return text, nil
	})
}

// CleanHTML makes a slice of an HTML stream well formed: a dangling "<p>"
// is dropped and the text is wrapped in a single paragraph when it does not
// already open and close one. Empty paragraphs collapse to "".
func CleanHTML(content string) string {
	if content == "" || content == "</p><p>" || content == "<p></p>" {
		return ""
	}

	cleaned := strings.TrimSuffix(content, "<p>")
	if !strings.HasPrefix(cleaned, "<p>") {
		cleaned = "<p>" + cleaned
	}
	if !strings.HasSuffix(cleaned, "</p>") {
		cleaned += "</p>"
	}
	if cleaned == "<p></p>" {
		return ""
	}
	return cleaned
}
