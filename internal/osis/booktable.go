package osis

import (
	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/errors"
)

// DivisionCode is the short osisID of a book-level division (e.g. "Gen",
// "1Sam", "Sir").
type DivisionCode string

// bookCodes covers the protestant canon and the deuterocanonical books the
// bundled versions carry. Books missing here are unsupported: CodeFor
// reports false and extraction fails with UnknownBookCodeError.
var bookCodes = map[bible.Book]DivisionCode{
	bible.Genesis:        "Gen",
	bible.Exodus:         "Exod",
	bible.Leviticus:      "Lev",
	bible.Numbers:        "Num",
	bible.Deuteronomy:    "Deut",
	bible.Joshua:         "Josh",
	bible.Judges:         "Judg",
	bible.Ruth:           "Ruth",
	bible.Samuel1:        "1Sam",
	bible.Samuel2:        "2Sam",
	bible.Kings1:         "1Kgs",
	bible.Kings2:         "2Kgs",
	bible.Chronicles1:    "1Chr",
	bible.Chronicles2:    "2Chr",
	bible.Ezra:           "Ezra",
	bible.Nehemiah:       "Neh",
	bible.Esther:         "Esth",
	bible.Job:            "Job",
	bible.Psalms:         "Ps",
	bible.Proverbs:       "Prov",
	bible.Ecclesiastes:   "Eccl",
	bible.SongOfSongs:    "Song",
	bible.Isaiah:         "Isa",
	bible.Jeremiah:       "Jer",
	bible.Lamentations:   "Lam",
	bible.Ezekiel:        "Ezek",
	bible.Daniel:         "Dan",
	bible.Hosea:          "Hos",
	bible.Joel:           "Joel",
	bible.Amos:           "Amos",
	bible.Obadiah:        "Obad",
	bible.Jonah:          "Jonah",
	bible.Micah:          "Mic",
	bible.Nahum:          "Nah",
	bible.Habakkuk:       "Hab",
	bible.Zephaniah:      "Zeph",
	bible.Haggai:         "Hag",
	bible.Zechariah:      "Zech",
	bible.Malachi:        "Mal",
	bible.Matthew:        "Matt",
	bible.Mark:           "Mark",
	bible.Luke:           "Luke",
	bible.John:           "John",
	bible.Acts:           "Acts",
	bible.Romans:         "Rom",
	bible.Corinthians1:   "1Cor",
	bible.Corinthians2:   "2Cor",
	bible.Galatians:      "Gal",
	bible.Ephesians:      "Eph",
	bible.Philippians:    "Phil",
	bible.Colossians:     "Col",
	bible.Thessalonians1: "1Thess",
	bible.Thessalonians2: "2Thess",
	bible.Timothy1:       "1Tim",
	bible.Timothy2:       "2Tim",
	bible.Titus:          "Titus",
	bible.Philemon:       "Phlm",
	bible.Hebrews:        "Heb",
	bible.James:          "Jas",
	bible.Peter1:         "1Pet",
	bible.Peter2:         "2Pet",
	bible.John1:          "1John",
	bible.John2:          "2John",
	bible.John3:          "3John",
	bible.Jude:           "Jude",
	bible.Revelation:     "Rev",

	bible.Esdras1:         "1Esd",
	bible.Maccabees1:      "1Macc",
	bible.Maccabees2:      "2Macc",
	bible.Ecclesiasticus:  "Sir",
	bible.Tobit:           "Tobit",
	bible.WisdomOfSolomon: "Wis",
}

var codeBooks = func() map[DivisionCode]bible.Book {
	m := make(map[DivisionCode]bible.Book, len(bookCodes))
	for b, c := range bookCodes {
		m[c] = b
	}
	return m
}()

// CodeFor returns the division code for a book, or false when the book is
// not representable in a document.
func CodeFor(book bible.Book) (DivisionCode, bool) {
	c, ok := bookCodes[book]
	return c, ok
}

// BookFor resolves a division code.
func BookFor(code DivisionCode) (bible.Book, error) {
	if b, ok := codeBooks[code]; ok {
		return b, nil
	}
	return 0, errors.NewUnknownBookCode(string(code))
}

// SupportedBooks returns the books with a division code, in canonical order.
func SupportedBooks() []bible.Book {
	var out []bible.Book
	for _, b := range bible.Books() {
		if _, ok := bookCodes[b]; ok {
			out = append(out, b)
		}
	}
	return out
}

// requireCode is CodeFor with the unsupported-book error callers surface.
func requireCode(book bible.Book) (DivisionCode, error) {
	if c, ok := CodeFor(book); ok {
		return c, nil
	}
	return "", errors.NewUnknownBookCode(book.String())
}
