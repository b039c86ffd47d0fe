// Package format renders extracted passages as HTML fragments or indented
// plain text.
package format

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/encoding"
	"github.com/FocuswithJustin/osistext/core/errors"
)

// Type selects the output markup.
type Type int

const (
	HTML Type = iota
	Text
)

func (t Type) String() string {
	if t == Text {
		return "text"
	}
	return "html"
}

// ParseType accepts "html" or "text".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return HTML, nil
	case "text", "plain", "plain_text":
		return Text, nil
	}
	return HTML, &errors.ValidationError{Field: "format", Value: s, Message: "must be html or text"}
}

// Options controls Passage and Scripture output.
type Options struct {
	Type         Type
	FullTitle    bool // use the book's full title instead of its short title
	VerseNumbers bool // only read by Scripture
}

// TitleSource supplies book titles. *osis.Parser satisfies it.
type TitleSource interface {
	FullTitle(book bible.Book) string
	ShortTitle(book bible.Book) string
}

// PassageSource extracts passages and supplies their titles.
type PassageSource interface {
	TitleSource
	Passage(ids []bible.VerseID, includeVerseNumbers bool) (*bible.Passage, error)
}

// Passage renders p book by book: a title, then each chapter heading
// followed by its paragraphs.
func Passage(p *bible.Passage, titles TitleSource, opts Options) string {
	if p.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	for _, bp := range p.Books {
		title := titles.ShortTitle(bp.Book)
		if opts.FullTitle {
			title = titles.FullTitle(bp.Book)
		}
		writeTitle(&sb, title, opts.Type)

		for _, cp := range bp.Chapters {
			writeChapter(&sb, cp.Chapter, opts.Type)
			for _, para := range cp.Paragraphs {
				writeParagraph(&sb, para, opts.Type)
			}
		}
	}
	return sb.String()
}

// Scripture extracts ids from src and renders the result.
func Scripture(src PassageSource, ids []bible.VerseID, opts Options) (string, error) {
	p, err := src.Passage(ids, opts.VerseNumbers)
	if err != nil {
		return "", err
	}
	return Passage(p, src, opts), nil
}

func writeTitle(sb *strings.Builder, title string, t Type) {
	if t == HTML {
		sb.WriteString("<h1>" + encoding.EscapeHTML(title) + "</h1>\n")
		return
	}
	if sb.Len() > 0 {
		sb.WriteString("\n\n")
	}
	sb.WriteString(title + "\n\n")
}

func writeChapter(sb *strings.Builder, chapter int, t Type) {
	n := strconv.Itoa(chapter)
	if t == HTML {
		sb.WriteString("<h2>Chapter " + n + "</h2>\n")
		return
	}
	sb.WriteString("Chapter " + n + "\n\n")
}

func writeParagraph(sb *strings.Builder, para string, t Type) {
	if t == HTML {
		sb.WriteString("<p>" + encoding.EscapeHTML(para) + "</p>\n")
		return
	}
	sb.WriteString("   " + para + "\n")
}
