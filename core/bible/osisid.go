package bible

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/osistext/core/errors"
)

// Ref is a parsed OSIS reference such as "Gen.1.1" or "Matt.5.3-12".
// Code is the document's division code; resolving it to a Book is the job of
// the book table of the document being read.
type Ref struct {
	Code     string `json:"code"`
	Chapter  int    `json:"chapter,omitempty"`
	Verse    int    `json:"verse,omitempty"`
	VerseEnd int    `json:"verse_end,omitempty"`
}

// refGrammar is the participle grammar for OSIS-style references.
// Examples: "Gen", "Gen.1", "Gen.1.1", "Gen.1.1-3", "1John.3.16"
//
//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	BookPrefix string       `@Int?`
	BookName   string       `@Ident`
	ChapterRef *chapterPart `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int        `@Int`
	VerseRef *versePart `( "." @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse int  `@Int`
	Range *int `( "-" @Int )?`
}

// refLexer defines the lexer for OSIS references.
// Division codes start with an upper-case letter after an optional number.
var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Z][A-Za-z]*`},
	{Name: "Punct", Pattern: `[.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseRef parses an OSIS-style reference string.
// Supported formats:
//   - "Gen" (book only)
//   - "Gen.1" (book and chapter)
//   - "Gen.1.1" (book, chapter, and verse)
//   - "Gen.1.1-3" (verse range)
func ParseRef(s string) (*Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewParse("osisID", "", "empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ParseError{Format: "osisID", Message: strconv.Quote(s), Err: err}
	}

	ref := &Ref{Code: parsed.BookPrefix + parsed.BookName}
	if parsed.ChapterRef != nil {
		ref.Chapter = parsed.ChapterRef.Chapter
		if v := parsed.ChapterRef.VerseRef; v != nil {
			ref.Verse = v.Verse
			if v.Range != nil {
				ref.VerseEnd = *v.Range
			}
		}
	}
	return ref, nil
}

// ParseVerseRef parses a reference that must name exactly one verse
// ("Code.Chapter.Verse"), as found on verse boundary elements.
func ParseVerseRef(s string) (*Ref, error) {
	ref, err := ParseRef(s)
	if err != nil {
		return nil, err
	}
	if ref.Chapter == 0 || ref.Verse == 0 || ref.VerseEnd != 0 {
		return nil, errors.NewParse("osisID", "", strconv.Quote(s)+" is not a single verse")
	}
	return ref, nil
}

// String returns the OSIS id form of the reference.
func (r *Ref) String() string {
	var sb strings.Builder
	sb.WriteString(r.Code)
	if r.Chapter > 0 {
		sb.WriteString(".")
		sb.WriteString(strconv.Itoa(r.Chapter))
		if r.Verse > 0 {
			sb.WriteString(".")
			sb.WriteString(strconv.Itoa(r.Verse))
			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}
	return sb.String()
}
