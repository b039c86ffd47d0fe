// Package osis reads OSIS scripture documents: it locates verses, extracts
// passage text for arbitrary verse lists, looks up book titles, and compiles
// whole documents into flat text streams with verse offsets.
//
// A Parser is immutable once loaded and safe for concurrent use. Every
// derived result is memoized in caches keyed by the document fingerprint,
// so parsers for different documents can share one Caches value.
package osis

import (
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cache"
	"github.com/FocuswithJustin/osistext/core/cas"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/core/xml"
	"github.com/FocuswithJustin/osistext/internal/archive"
	"github.com/FocuswithJustin/osistext/internal/logging"
)

// Parser extracts text from one loaded OSIS document.
type Parser struct {
	doc         *xml.Document
	source      string
	fingerprint string
	caches      *Caches

	indexOnce sync.Once
	verses    map[string]*xml.Node

	// verseSets holds the sorted verse ids below each paragraph element,
	// keyed by xml.Node.Key. Node keys are only meaningful inside this
	// document, so the cache is never shared.
	verseSets cache.Cache[string, []bible.VerseID]
}

// Option configures Load.
type Option func(*Parser)

// WithCache makes the parser store results in c instead of private caches.
func WithCache(c *Caches) Option {
	return func(p *Parser) {
		if c != nil {
			p.caches = c
		}
	}
}

// WithSource names the document in logs and errors.
func WithSource(source string) Option {
	return func(p *Parser) {
		p.source = source
	}
}

// Load parses an OSIS document from r. Any read or parse failure is returned
// as a *errors.DocumentLoadError.
func Load(r io.Reader, opts ...Option) (*Parser, error) {
	start := time.Now()
	p := &Parser{verseSets: cache.NewUnbounded[string, []bible.VerseID]()}
	for _, opt := range opts {
		opt(p)
	}
	if p.caches == nil {
		p.caches = NewCaches()
	}

	fp := cas.NewFingerprinter(r)
	doc, err := xml.ParseReader(fp)
	if err != nil {
		return nil, errors.NewDocumentLoad(p.source, err)
	}
	// Hash trailing bytes the decoder did not need.
	if _, err := io.Copy(io.Discard, fp); err != nil {
		return nil, errors.NewDocumentLoad(p.source, err)
	}
	p.doc = doc
	p.fingerprint = fp.Sum()

	logging.DocumentLoaded(p.source, doc.Namespace(), p.fingerprint, time.Since(start))
	return p, nil
}

// LoadFile loads the OSIS document at path. Documents ending in .xz or .gz
// are decompressed while reading.
func LoadFile(path string, opts ...Option) (*Parser, error) {
	d, err := archive.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewDocumentLoad(path, errors.NewNotFound("document", path))
		}
		return nil, errors.NewDocumentLoad(path, errors.NewIO("open", path, err))
	}
	defer d.Close()

	return Load(d, append([]Option{WithSource(path)}, opts...)...)
}

// Namespace returns the document's default XML namespace.
func (p *Parser) Namespace() string {
	return p.doc.Namespace()
}

// Fingerprint returns the BLAKE3 digest of the source bytes.
func (p *Parser) Fingerprint() string {
	return p.fingerprint
}

// Source returns the name the document was loaded under.
func (p *Parser) Source() string {
	return p.source
}

// FullTitle returns the text of the book's title element, or "" when the
// book has no division code or the document has no title for it.
func (p *Parser) FullTitle(book bible.Book) string {
	return p.title(book, false)
}

// ShortTitle returns the "short" attribute of the book's title element.
func (p *Parser) ShortTitle(book bible.Book) string {
	return p.title(book, true)
}

func (p *Parser) title(book bible.Book, short bool) string {
	key := titleKey{fingerprint: p.fingerprint, book: book, short: short}
	title, _ := cache.GetOrCompute(p.caches.titles, key, func() (string, error) {
		el := p.titleElement(book)
		if el == nil {
			return "", nil
		}
		if short {
			return el.AttrOr("short", ""), nil
		}
		return el.Text(), nil
	})
	return title
}

func (p *Parser) titleElement(book bible.Book) *xml.Node {
	code, ok := CodeFor(book)
	if !ok {
		return nil
	}
	el, err := p.doc.XPathFirst("//div[@osisID='" + string(code) + "']/title")
	if err != nil {
		logging.Warn("title lookup failed", "book", book.String(), "error", err)
		return nil
	}
	return el
}

// bookElement returns the book-level division for code, or nil.
func (p *Parser) bookElement(code DivisionCode) (*xml.Node, error) {
	return p.doc.XPathFirst("//div[@osisID='" + string(code) + "']")
}

// verseElement returns the first verse element whose osisID is exactly
// osisID. The index is built on first use.
func (p *Parser) verseElement(osisID string) *xml.Node {
	p.indexOnce.Do(p.indexVerses)
	return p.verses[osisID]
}

func (p *Parser) indexVerses() {
	start := time.Now()
	p.verses = make(map[string]*xml.Node)

	nodes, err := p.doc.XPath("//verse[@osisID]")
	if err != nil {
		logging.Error("verse index failed", "source", p.source, "error", err)
		return
	}
	ns := p.doc.Namespace()
	for _, n := range nodes {
		if n.Namespace() != ns {
			continue
		}
		id, _ := n.Attr("osisID")
		if _, seen := p.verses[id]; !seen {
			p.verses[id] = n
		}
	}
	logging.Debug("verse index built", "source", p.source, "verses", len(p.verses), "duration_ms", time.Since(start).Milliseconds())
}

// CacheStats reports hit and miss counts for the parser's caches. When
// caches are shared the figures cover every parser using them.
func (p *Parser) CacheStats() CacheStats {
	return p.caches.Stats()
}
