package osis

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cache"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/core/xml"
	"github.com/FocuswithJustin/osistext/internal/logging"
)

const (
	gapMarker       = "... "
	paragraphMarker = "¶"
)

// traversalState is threaded through the paragraph walk by value. While
// skipping is set, text is discarded until the next requested verse
// boundary. current is the last requested verse consumed.
type traversalState struct {
	skipping bool
	current  bible.VerseID
}

// Passage returns the text of the requested verses grouped by book and
// chapter in canonical order. ids may be unsorted and contain duplicates.
// An empty list yields an empty passage.
//
// Every id must name a book with a division code (*errors.UnknownBookCodeError
// otherwise) and a verse present in the document (*errors.VerseNotFoundError
// otherwise). The returned passage is a copy the caller may modify.
func (p *Parser) Passage(ids []bible.VerseID, includeVerseNumbers bool) (*bible.Passage, error) {
	sorted := bible.SortUnique(ids)
	if len(sorted) == 0 {
		return &bible.Passage{Books: []bible.BookPassage{}}, nil
	}
	for _, id := range sorted {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		if _, err := requireCode(id.Book()); err != nil {
			return nil, err
		}
	}

	key := idsKey{fingerprint: p.fingerprint, numbers: includeVerseNumbers, ids: packIDs(sorted)}
	passage, err := cache.GetOrCompute(p.caches.passages, key, func() (*bible.Passage, error) {
		head, err := p.extract(key, sorted)
		if err != nil {
			return nil, err
		}
		paragraphs := make(bible.Paragraphs)
		for s := head; s != nil; s = s.next {
			paragraphs.Add(s.book, s.chapter, s.paragraph)
		}
		return bible.SortParagraphs(paragraphs), nil
	})
	if err != nil {
		return nil, err
	}
	return passage.Clone(), nil
}

// extract walks paragraphs forward until the ids are exhausted or a suffix
// of them has already been extracted, then links the new steps onto that
// cached tail from the back.
func (p *Parser) extract(key idsKey, ids []bible.VerseID) (*step, error) {
	type walked struct {
		key  idsKey
		step step
	}
	var pending []walked
	var tail *step

	for i := 0; i < len(ids); {
		k := key.suffix(i)
		if s, ok := p.caches.steps.Get(k); ok {
			tail = s
			break
		}

		anchor := ids[i]
		res, err := p.paragraph(ids[i:], key.numbers)
		if err != nil {
			return nil, err
		}
		pending = append(pending, walked{
			key:  k,
			step: step{book: anchor.Book(), chapter: anchor.Chapter(), paragraph: res.text},
		})

		// Consume every id up to and including the last one matched.
		rest := ids[i:]
		i += sort.Search(len(rest), func(j int) bool { return rest[j] > res.last })
	}

	for j := len(pending) - 1; j >= 0; j-- {
		s := pending[j].step
		s.next = tail
		tail = &s
		p.caches.steps.Put(pending[j].key, tail)
	}
	return tail, nil
}

// paragraph extracts the structural paragraph holding ids[0]. Only the
// requested ids that fall inside the paragraph can change its text, so the
// result is cached under that subset.
func (p *Parser) paragraph(ids []bible.VerseID, numbers bool) (paragraphResult, error) {
	anchor := ids[0]
	code, err := requireCode(anchor.Book())
	if err != nil {
		return paragraphResult{}, err
	}
	osisID := osisIDFor(code, anchor)

	verse := p.verseElement(osisID)
	if verse == nil || verse.Parent() == nil {
		return paragraphResult{}, errors.NewVerseNotFound(int(anchor), osisID)
	}
	parent := verse.Parent()

	requested := intersect(ids, p.verseSet(parent))
	key := idsKey{fingerprint: p.fingerprint, numbers: numbers, ids: packIDs(requested)}
	return cache.GetOrCompute(p.caches.paragraphs, key, func() (paragraphResult, error) {
		logging.Debug("paragraph walk", "anchor", osisID, "requested", len(requested))
		w := walker{requested: requested, numbers: numbers}
		text, st := w.paragraph(parent, traversalState{current: anchor})
		return paragraphResult{text: text, last: st.current}, nil
	})
}

// verseSet returns the sorted ids of every verse element below el.
func (p *Parser) verseSet(el *xml.Node) []bible.VerseID {
	set, _ := cache.GetOrCompute(p.verseSets, el.Key(), func() ([]bible.VerseID, error) {
		var ids []bible.VerseID
		var collect func(n *xml.Node)
		collect = func(n *xml.Node) {
			for _, c := range n.Children() {
				if roleOf(c) == roleVerse {
					if id, ok := verseIDOf(c); ok {
						ids = append(ids, id)
					}
				}
				collect(c)
			}
		}
		collect(el)
		return bible.SortUnique(ids), nil
	})
	return set
}

// intersect returns the members of a that are also in b. Both are sorted.
func intersect(a, b []bible.VerseID) []bible.VerseID {
	var out []bible.VerseID
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// walker reconstructs paragraph text for one set of requested verses.
type walker struct {
	requested []bible.VerseID
	numbers   bool
}

func (w walker) isRequested(id bible.VerseID) bool {
	i := sort.Search(len(w.requested), func(i int) bool { return w.requested[i] >= id })
	return i < len(w.requested) && w.requested[i] == id
}

// paragraph joins the contributions of el's children.
func (w walker) paragraph(el *xml.Node, st traversalState) (string, traversalState) {
	text, st := w.children(el, st, false)
	return cleanParagraph(text), st
}

// children concatenates the contributions of el's child elements in
// document order, separating non-empty parts with a single space unless
// the text so far already ends in whitespace.
func (w walker) children(el *xml.Node, st traversalState, insideNote bool) (string, traversalState) {
	var sb strings.Builder
	for _, child := range el.Children() {
		var part string
		part, st = w.element(child, st, insideNote)
		if part == "" {
			continue
		}
		if sb.Len() > 0 && !endsInSpace(sb.String()) {
			sb.WriteByte(' ')
		}
		sb.WriteString(part)
	}
	return sb.String(), st
}

func (w walker) element(el *xml.Node, st traversalState, insideNote bool) (string, traversalState) {
	role := roleOf(el)
	if role == roleVerse {
		return w.verse(el, st)
	}
	if st.skipping {
		return "", st
	}

	if role == roleReading {
		return elementText(el), st
	}
	if insideNote {
		return "", st
	}

	var text string
	switch role {
	case roleWord, roleTextChange:
		return textAndTail(el), st
	case roleQuote:
		text, st = w.children(el, st, false)
		text = join(textAndTail(el), text)
	case roleSegment:
		text, st = w.children(el, st, false)
		text += elementTail(el)
	default:
		text, st = w.children(el, st, role == roleNote)
	}
	return cleanParagraph(text), st
}

func (w walker) verse(el *xml.Node, st traversalState) (string, traversalState) {
	id, ok := verseIDOf(el)
	if !ok {
		return "", st
	}
	if !w.isRequested(id) {
		st.skipping = true
		return "", st
	}

	var sb strings.Builder
	if st.skipping {
		st.skipping = false
		if id > st.current+1 {
			sb.WriteString(gapMarker)
		}
	}
	if w.numbers {
		sb.WriteString(strconv.Itoa(id.Verse()))
		sb.WriteString(". ")
	}
	sb.WriteString(textAndTail(el))
	st.current = id
	return sb.String(), st
}

// join appends b to a with the same spacing rule as children.
func join(a, b string) string {
	if a == "" || b == "" || endsInSpace(a) {
		return a + b
	}
	return a + " " + b
}

func endsInSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

// cleanParagraph drops paragraph markers, collapses doubled spaces and
// trims the result.
func cleanParagraph(s string) string {
	s = strings.ReplaceAll(s, paragraphMarker, "")
	s = strings.ReplaceAll(s, "  ", " ")
	return strings.TrimSpace(s)
}
