package osis

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/encoding"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/core/xml"
	"github.com/FocuswithJustin/osistext/internal/logging"
)

// StreamKind names one of the flat text renderings produced by Compile.
type StreamKind int

const (
	StreamHTML StreamKind = iota
	StreamHTMLReaders
	StreamHTMLNotes
	StreamPlainText
	StreamPlainTextReaders
	StreamPlainTextNotes

	streamCount
)

var streamNames = [streamCount]string{
	StreamHTML:             "html",
	StreamHTMLReaders:      "html_readers",
	StreamHTMLNotes:        "html_notes",
	StreamPlainText:        "plain_text",
	StreamPlainTextReaders: "plain_text_readers",
	StreamPlainTextNotes:   "plain_text_notes",
}

// streamFlags: readers streams carry no verse numbers, notes streams carry
// footnote text.
var streamFlags = [streamCount]struct{ html, numbered, notes bool }{
	StreamHTML:             {html: true, numbered: true},
	StreamHTMLReaders:      {html: true},
	StreamHTMLNotes:        {html: true, numbered: true, notes: true},
	StreamPlainText:        {numbered: true},
	StreamPlainTextReaders: {},
	StreamPlainTextNotes:   {numbered: true, notes: true},
}

// StreamKinds returns every kind in a stable order.
func StreamKinds() []StreamKind {
	kinds := make([]StreamKind, streamCount)
	for i := range kinds {
		kinds[i] = StreamKind(i)
	}
	return kinds
}

func (k StreamKind) String() string {
	if k >= 0 && k < streamCount {
		return streamNames[k]
	}
	return "StreamKind(" + strconv.Itoa(int(k)) + ")"
}

// IsHTML reports whether the stream holds markup.
func (k StreamKind) IsHTML() bool {
	return k >= 0 && k < streamCount && streamFlags[k].html
}

// ParseStreamKind resolves a stream name such as "plain_text_notes".
func ParseStreamKind(s string) (StreamKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range streamNames {
		if n == name {
			return StreamKind(k), nil
		}
	}
	return 0, &errors.ValidationError{Field: "kind", Value: s, Message: "unknown stream kind"}
}

// Stream is one compiled rendering. Starts and Ends are byte offsets into
// Content for each verse.
type Stream struct {
	Kind    StreamKind
	Content string
	Starts  map[bible.VerseID]int
	Ends    map[bible.VerseID]int
}

// BookTitle is the title recorded for a book while compiling.
type BookTitle struct {
	Full  string `json:"full"`
	Short string `json:"short"`
}

// Compiled is a whole document rendered into every stream kind.
type Compiled struct {
	Streams     [streamCount]*Stream
	Books       []bible.Book
	Titles      map[bible.Book]BookTitle
	UnknownTags []string
}

// Stream returns the stream of the given kind, or nil.
func (c *Compiled) Stream(kind StreamKind) *Stream {
	if kind < 0 || kind >= streamCount {
		return nil
	}
	return c.Streams[kind]
}

// Compile renders every book the document carries into the six streams, in
// canonical book order. Books without a division code are skipped.
func (p *Parser) Compile() (*Compiled, error) {
	start := time.Now()
	c := &compiler{unknown: make(map[string]struct{})}
	for k := range c.streams {
		c.streams[k] = &streamBuilder{
			kind:   StreamKind(k),
			starts: make(map[bible.VerseID]int),
			ends:   make(map[bible.VerseID]int),
		}
	}
	out := &Compiled{Titles: make(map[bible.Book]BookTitle)}

	for _, book := range SupportedBooks() {
		code, _ := CodeFor(book)
		div, err := p.bookElement(code)
		if err != nil {
			return nil, errors.Wrapf(err, "locating %s", code)
		}
		if div == nil {
			continue
		}

		c.title = BookTitle{}
		c.current = 0
		c.appendText(elementText(div), false)
		c.children(div, false)
		c.markEnds()

		out.Books = append(out.Books, book)
		out.Titles[book] = c.title
	}

	for k, sb := range c.streams {
		out.Streams[k] = &Stream{
			Kind:    sb.kind,
			Content: sb.buf.String(),
			Starts:  sb.starts,
			Ends:    sb.ends,
		}
	}
	for tag := range c.unknown {
		out.UnknownTags = append(out.UnknownTags, tag)
	}
	sort.Strings(out.UnknownTags)

	logging.StreamsCompiled(p.source, len(out.Books), out.UnknownTags, time.Since(start))
	return out, nil
}

type streamBuilder struct {
	kind   StreamKind
	buf    strings.Builder
	starts map[bible.VerseID]int
	ends   map[bible.VerseID]int
}

func (s *streamBuilder) endsWith(suffixes ...string) bool {
	str := s.buf.String()
	for _, suf := range suffixes {
		if strings.HasSuffix(str, suf) {
			return true
		}
	}
	return false
}

// compiler holds the per-document walk state.
type compiler struct {
	streams [streamCount]*streamBuilder
	current bible.VerseID
	title   BookTitle
	unknown map[string]struct{}
}

func (c *compiler) element(el *xml.Node, inNotes bool) {
	switch roleOf(el) {
	case roleContainer:
		c.container(el, inNotes)
	case roleNote:
		c.appendText(elementText(el), true)
		c.children(el, true)
		c.appendText(elementTail(el), inNotes)
	case roleParagraph:
		c.paragraph(el)
	case roleChapter:
		c.markEnds()
		c.current = 0
		c.container(el, inNotes)
	case roleTitle:
		c.bookTitle(el)
		c.appendText(elementTail(el), inNotes)
	case roleVerse:
		c.appendText(elementText(el), inNotes)
		c.verse(el)
		c.appendText(elementTail(el), inNotes)
	case roleWord, roleTextChange:
		c.appendText(textAndTail(el), inNotes)
	case roleQuote:
		c.container(el, inNotes)
	case roleLineBreak:
		c.lineBreak()
		c.appendText(textAndTail(el), inNotes)
	case roleSegment:
		c.children(el, inNotes)
		c.appendText(elementTail(el), inNotes)
	case roleReading:
		if inNotes {
			c.appendText(textAndTail(el), inNotes)
			return
		}
		c.unknown[el.Name()] = struct{}{}
		c.container(el, inNotes)
	default:
		c.unknown[el.Name()] = struct{}{}
		c.container(el, inNotes)
	}
}

// container emits the element's text, its children, then its tail.
func (c *compiler) container(el *xml.Node, inNotes bool) {
	c.appendText(elementText(el), inNotes)
	c.children(el, inNotes)
	c.appendText(elementTail(el), inNotes)
}

func (c *compiler) children(el *xml.Node, inNotes bool) {
	for _, child := range el.Children() {
		c.element(child, inNotes)
	}
}

func (c *compiler) paragraph(el *xml.Node) {
	for _, s := range c.streams {
		if streamFlags[s.kind].html {
			s.buf.WriteString("<p>")
		} else {
			s.buf.WriteString("\n")
		}
	}
	c.appendText(elementText(el), false)
	c.children(el, false)
	for _, s := range c.streams {
		if streamFlags[s.kind].html {
			s.buf.WriteString("</p>")
		}
	}
	c.appendText(elementTail(el), false)
}

// bookTitle keeps the first title element that supplies both forms.
func (c *compiler) bookTitle(el *xml.Node) {
	if c.title.Full != "" && c.title.Short != "" {
		return
	}
	c.title = BookTitle{
		Full:  strings.TrimSpace(el.Text()),
		Short: el.AttrOr("short", ""),
	}
}

func (c *compiler) verse(el *xml.Node) {
	id, ok := verseIDOf(el)
	if !ok {
		return
	}
	c.markEnds()
	c.current = id
	for _, s := range c.streams {
		s.starts[id] = s.buf.Len()
	}

	number := strconv.Itoa(id.Verse())
	for _, s := range c.streams {
		flags := streamFlags[s.kind]
		if !flags.numbered {
			continue
		}
		if flags.html {
			if s.buf.Len() > 0 && !s.endsWith("</p>", "<p>") {
				s.buf.WriteByte(' ')
			}
			s.buf.WriteString("<sup>" + number + "</sup>")
		} else {
			if s.buf.Len() > 0 && !s.endsWith("\n") {
				s.buf.WriteByte(' ')
			}
			s.buf.WriteString(number + ".")
		}
	}
}

func (c *compiler) lineBreak() {
	for _, s := range c.streams {
		if streamFlags[s.kind].html {
			s.buf.WriteString("<br/>")
		}
	}
}

// markEnds closes the current verse at the present length of every stream.
func (c *compiler) markEnds() {
	if c.current == 0 {
		return
	}
	for _, s := range c.streams {
		s.ends[c.current] = s.buf.Len()
	}
}

// appendText adds trimmed text to the streams that carry it. Text starting
// with a letter is separated from what precedes it by a space, except at
// the start of a paragraph or line.
func (c *compiler) appendText(text string, inNotes bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), paragraphMarker, "")
	if text == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(text)
	letter := unicode.IsLetter(first)

	for _, s := range c.streams {
		flags := streamFlags[s.kind]
		if inNotes && !flags.notes {
			continue
		}
		if letter && s.buf.Len() > 0 {
			if flags.html && !s.endsWith("<br/>", "</p>", "<p>") {
				s.buf.WriteByte(' ')
			}
			if !flags.html && !s.endsWith("\n") {
				s.buf.WriteByte(' ')
			}
		}
		if flags.html {
			s.buf.WriteString(encoding.EscapeText(text))
		} else {
			s.buf.WriteString(text)
		}
	}
}
