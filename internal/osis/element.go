package osis

import (
	"strings"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/encoding"
	"github.com/FocuswithJustin/osistext/core/xml"
)

// elementRole is the structural role of an OSIS element. Anything not
// listed maps to roleOther, which both walkers treat as a plain container.
type elementRole int

const (
	roleOther elementRole = iota
	roleVerse
	roleReading    // rdg
	roleNote       // note
	roleWord       // w
	roleTextChange // transChange
	roleQuote      // q
	roleSegment    // seg
	roleParagraph  // p
	roleChapter
	roleTitle
	roleContainer // div, lg, l, list, item, divineName
	roleLineBreak // lb
)

var roles = map[string]elementRole{
	"verse":       roleVerse,
	"rdg":         roleReading,
	"note":        roleNote,
	"w":           roleWord,
	"transChange": roleTextChange,
	"q":           roleQuote,
	"seg":         roleSegment,
	"p":           roleParagraph,
	"chapter":     roleChapter,
	"title":       roleTitle,
	"div":         roleContainer,
	"lg":          roleContainer,
	"l":           roleContainer,
	"list":        roleContainer,
	"item":        roleContainer,
	"divineName":  roleContainer,
	"lb":          roleLineBreak,
}

func roleOf(n *xml.Node) elementRole {
	return roles[n.Name()]
}

// elementText is the element's leading character data with newlines
// flattened to spaces.
func elementText(n *xml.Node) string {
	return encoding.SingleLine(n.Text())
}

func elementTail(n *xml.Node) string {
	return encoding.SingleLine(n.Tail())
}

func textAndTail(n *xml.Node) string {
	return elementText(n) + elementTail(n)
}

// placeholderID marks verse elements that carry no assigned id.
const placeholderID = ".."

// verseIDOf decodes the osisID of a verse element. It reports false for
// placeholders, ranges, and ids whose division code is not in the table.
func verseIDOf(n *xml.Node) (bible.VerseID, bool) {
	raw, ok := n.Attr("osisID")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == placeholderID {
		return 0, false
	}
	ref, err := bible.ParseVerseRef(raw)
	if err != nil {
		return 0, false
	}
	book, err := BookFor(DivisionCode(ref.Code))
	if err != nil {
		return 0, false
	}
	id, err := bible.NewVerseID(book, ref.Chapter, ref.Verse)
	if err != nil {
		return 0, false
	}
	return id, true
}

// osisIDFor renders the composite verse id a document uses for id.
func osisIDFor(code DivisionCode, id bible.VerseID) string {
	ref := bible.Ref{Code: string(code), Chapter: id.Chapter(), Verse: id.Verse()}
	return ref.String()
}
