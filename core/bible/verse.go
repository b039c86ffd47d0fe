package bible

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/osistext/core/errors"
)

const (
	bookFactor    = 1_000_000
	chapterFactor = 1_000
)

// VerseID encodes book, chapter and verse as a single ordered integer:
// book*1_000_000 + chapter*1_000 + verse. Exodus 20:3 is 2020003.
// The zero value means "no verse".
type VerseID int

// NewVerseID builds a VerseID, rejecting unknown books and out-of-range
// chapter or verse numbers.
func NewVerseID(book Book, chapter, verse int) (VerseID, error) {
	if !book.IsValid() {
		return 0, errors.NewInvalidVerse(0, fmt.Sprintf("unknown book %d", int(book)))
	}
	if chapter < 1 || chapter >= bookFactor/chapterFactor {
		return 0, errors.NewInvalidVerse(0, fmt.Sprintf("chapter %d out of range", chapter))
	}
	if verse < 1 || verse >= chapterFactor {
		return 0, errors.NewInvalidVerse(0, fmt.Sprintf("verse %d out of range", verse))
	}
	return VerseID(int(book)*bookFactor + chapter*chapterFactor + verse), nil
}

// MustVerseID is NewVerseID for tests and tables of constants.
func MustVerseID(book Book, chapter, verse int) VerseID {
	id, err := NewVerseID(book, chapter, verse)
	if err != nil {
		panic(err)
	}
	return id
}

// Book returns the book component.
func (v VerseID) Book() Book { return Book(int(v) / bookFactor) }

// Chapter returns the chapter component.
func (v VerseID) Chapter() int { return int(v) % bookFactor / chapterFactor }

// Verse returns the verse component.
func (v VerseID) Verse() int { return int(v) % chapterFactor }

// IsValid reports whether v decodes to a known book with non-zero chapter and verse.
func (v VerseID) IsValid() bool {
	return v > 0 && v.Book().IsValid() && v.Chapter() > 0 && v.Verse() > 0
}

// Validate returns an InvalidVerseError when v is absent or malformed.
func (v VerseID) Validate() error {
	if v == 0 {
		return errors.NewInvalidVerse(0, "verse id cannot be empty")
	}
	if !v.IsValid() {
		return errors.NewInvalidVerse(int(v), "not a valid verse id")
	}
	return nil
}

func (v VerseID) String() string {
	return fmt.Sprintf("%s %d:%d", v.Book().Title(), v.Chapter(), v.Verse())
}

// ParseVerseID parses the decimal form produced by VerseID.
func ParseVerseID(s string) (VerseID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.NewInvalidVerse(0, fmt.Sprintf("%q is not a number", s))
	}
	v := VerseID(n)
	if err := v.Validate(); err != nil {
		return 0, err
	}
	return v, nil
}

// SortUnique returns a sorted copy of ids with duplicates removed.
func SortUnique(ids []VerseID) []VerseID {
	out := make([]VerseID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 0
	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}

// Range returns every verse id from start to end inclusive within one
// chapter. Both bounds are validated before anything is allocated.
func Range(book Book, chapter, start, end int) ([]VerseID, error) {
	first, err := NewVerseID(book, chapter, start)
	if err != nil {
		return nil, err
	}
	last, err := NewVerseID(book, chapter, end)
	if err != nil {
		return nil, err
	}
	if last < first {
		return nil, errors.NewValidation("range", fmt.Sprintf("end verse %d before start %d", end, start))
	}
	ids := make([]VerseID, 0, last-first+1)
	for id := first; id <= last; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}
