package osis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/errors"
)

// ParseVerseList resolves a comma or space separated list of references.
// Each entry is a numeric verse id ("1001001"), an OSIS verse id
// ("Gen.1.1") or a range within one chapter ("Gen.1.1-3"). Order and
// duplicates are kept; Passage sorts them.
func ParseVerseList(s string) ([]bible.VerseID, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, errors.NewInvalidVerse(0, "no verse references given")
	}

	var ids []bible.VerseID
	for _, f := range fields {
		got, err := resolveRef(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, got...)
	}
	return ids, nil
}

func resolveRef(s string) ([]bible.VerseID, error) {
	if isDigits(s) {
		id, err := bible.ParseVerseID(s)
		if err != nil {
			return nil, err
		}
		return []bible.VerseID{id}, nil
	}

	ref, err := bible.ParseRef(s)
	if err != nil || ref.Chapter == 0 || ref.Verse == 0 {
		return nil, errors.NewInvalidVerse(0, fmt.Sprintf("%q is not a verse reference", s))
	}
	book, err := BookFor(DivisionCode(ref.Code))
	if err != nil {
		return nil, err
	}
	if ref.VerseEnd == 0 {
		id, err := bible.NewVerseID(book, ref.Chapter, ref.Verse)
		if err != nil {
			return nil, err
		}
		return []bible.VerseID{id}, nil
	}
	return bible.Range(book, ref.Chapter, ref.Verse, ref.VerseEnd)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ResolveBook accepts a book name ("GENESIS", "1 Samuel") or a division
// code ("1Sam").
func ResolveBook(s string) (bible.Book, error) {
	if b, ok := bible.ParseBook(s); ok {
		return b, nil
	}
	if b, err := BookFor(DivisionCode(strings.TrimSpace(s))); err == nil {
		return b, nil
	}
	return 0, &errors.ValidationError{Field: "book", Value: s, Message: "unknown book"}
}
