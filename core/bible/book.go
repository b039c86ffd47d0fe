// Package bible defines the canonical book enumeration, the numeric verse
// identifier scheme, and the ordered passage type returned by the parsers.
package bible

import (
	"fmt"
	"strings"
)

// Book identifies a canonical scripture book. The numeric value is the
// book's position in canonical order and is the leading component of a
// VerseID.
type Book int

// Protestant canon in canonical order.
const (
	Genesis Book = iota + 1
	Exodus
	Leviticus
	Numbers
	Deuteronomy
	Joshua
	Judges
	Ruth
	Samuel1
	Samuel2
	Kings1
	Kings2
	Chronicles1
	Chronicles2
	Ezra
	Nehemiah
	Esther
	Job
	Psalms
	Proverbs
	Ecclesiastes
	SongOfSongs
	Isaiah
	Jeremiah
	Lamentations
	Ezekiel
	Daniel
	Hosea
	Joel
	Amos
	Obadiah
	Jonah
	Micah
	Nahum
	Habakkuk
	Zephaniah
	Haggai
	Zechariah
	Malachi
	Matthew
	Mark
	Luke
	John
	Acts
	Romans
	Corinthians1
	Corinthians2
	Galatians
	Ephesians
	Philippians
	Colossians
	Thessalonians1
	Thessalonians2
	Timothy1
	Timothy2
	Titus
	Philemon
	Hebrews
	James
	Peter1
	Peter2
	John1
	John2
	John3
	Jude
	Revelation
)

// Deuterocanonical books follow the protestant canon.
const (
	Esdras1 Book = iota + 67
	Tobit
	WisdomOfSolomon
	Ecclesiasticus
	Maccabees1
	Maccabees2
	Judith
	AdditionsToEsther
	Baruch
	EpistleOfJeremiah
	PrayerOfAzariah
	Susanna
	BelAndTheDragon
	SongOfTheThreeYoungMen
	AdditionsToDaniel
	Esdras2
	Maccabees3
	Maccabees4
	PrayerOfManasseh
)

// bookInfo holds the display data for one book.
type bookInfo struct {
	name  string
	title string
}

var books = map[Book]bookInfo{
	Genesis:                {"GENESIS", "Genesis"},
	Exodus:                 {"EXODUS", "Exodus"},
	Leviticus:              {"LEVITICUS", "Leviticus"},
	Numbers:                {"NUMBERS", "Numbers"},
	Deuteronomy:            {"DEUTERONOMY", "Deuteronomy"},
	Joshua:                 {"JOSHUA", "Joshua"},
	Judges:                 {"JUDGES", "Judges"},
	Ruth:                   {"RUTH", "Ruth"},
	Samuel1:                {"SAMUEL_1", "1 Samuel"},
	Samuel2:                {"SAMUEL_2", "2 Samuel"},
	Kings1:                 {"KINGS_1", "1 Kings"},
	Kings2:                 {"KINGS_2", "2 Kings"},
	Chronicles1:            {"CHRONICLES_1", "1 Chronicles"},
	Chronicles2:            {"CHRONICLES_2", "2 Chronicles"},
	Ezra:                   {"EZRA", "Ezra"},
	Nehemiah:               {"NEHEMIAH", "Nehemiah"},
	Esther:                 {"ESTHER", "Esther"},
	Job:                    {"JOB", "Job"},
	Psalms:                 {"PSALMS", "Psalms"},
	Proverbs:               {"PROVERBS", "Proverbs"},
	Ecclesiastes:           {"ECCLESIASTES", "Ecclesiastes"},
	SongOfSongs:            {"SONG_OF_SONGS", "Song of Songs"},
	Isaiah:                 {"ISAIAH", "Isaiah"},
	Jeremiah:               {"JEREMIAH", "Jeremiah"},
	Lamentations:           {"LAMENTATIONS", "Lamentations"},
	Ezekiel:                {"EZEKIEL", "Ezekiel"},
	Daniel:                 {"DANIEL", "Daniel"},
	Hosea:                  {"HOSEA", "Hosea"},
	Joel:                   {"JOEL", "Joel"},
	Amos:                   {"AMOS", "Amos"},
	Obadiah:                {"OBADIAH", "Obadiah"},
	Jonah:                  {"JONAH", "Jonah"},
	Micah:                  {"MICAH", "Micah"},
	Nahum:                  {"NAHUM", "Nahum"},
	Habakkuk:               {"HABAKKUK", "Habakkuk"},
	Zephaniah:              {"ZEPHANIAH", "Zephaniah"},
	Haggai:                 {"HAGGAI", "Haggai"},
	Zechariah:              {"ZECHARIAH", "Zechariah"},
	Malachi:                {"MALACHI", "Malachi"},
	Matthew:                {"MATTHEW", "Matthew"},
	Mark:                   {"MARK", "Mark"},
	Luke:                   {"LUKE", "Luke"},
	John:                   {"JOHN", "John"},
	Acts:                   {"ACTS", "Acts"},
	Romans:                 {"ROMANS", "Romans"},
	Corinthians1:           {"CORINTHIANS_1", "1 Corinthians"},
	Corinthians2:           {"CORINTHIANS_2", "2 Corinthians"},
	Galatians:              {"GALATIANS", "Galatians"},
	Ephesians:              {"EPHESIANS", "Ephesians"},
	Philippians:            {"PHILIPPIANS", "Philippians"},
	Colossians:             {"COLOSSIANS", "Colossians"},
	Thessalonians1:         {"THESSALONIANS_1", "1 Thessalonians"},
	Thessalonians2:         {"THESSALONIANS_2", "2 Thessalonians"},
	Timothy1:               {"TIMOTHY_1", "1 Timothy"},
	Timothy2:               {"TIMOTHY_2", "2 Timothy"},
	Titus:                  {"TITUS", "Titus"},
	Philemon:               {"PHILEMON", "Philemon"},
	Hebrews:                {"HEBREWS", "Hebrews"},
	James:                  {"JAMES", "James"},
	Peter1:                 {"PETER_1", "1 Peter"},
	Peter2:                 {"PETER_2", "2 Peter"},
	John1:                  {"JOHN_1", "1 John"},
	John2:                  {"JOHN_2", "2 John"},
	John3:                  {"JOHN_3", "3 John"},
	Jude:                   {"JUDE", "Jude"},
	Revelation:             {"REVELATION", "Revelation"},
	Esdras1:                {"ESDRAS_1", "1 Esdras"},
	Tobit:                  {"TOBIT", "Tobit"},
	WisdomOfSolomon:        {"WISDOM_OF_SOLOMON", "Wisdom of Solomon"},
	Ecclesiasticus:         {"ECCLESIASTICUS", "Ecclesiasticus"},
	Maccabees1:             {"MACCABEES_1", "1 Maccabees"},
	Maccabees2:             {"MACCABEES_2", "2 Maccabees"},
	Judith:                 {"JUDITH", "Judith"},
	AdditionsToEsther:      {"ADDITIONS_TO_ESTHER", "Additions to Esther"},
	Baruch:                 {"BARUCH", "Baruch"},
	EpistleOfJeremiah:      {"EPISTLE_OF_JEREMIAH", "Epistle of Jeremiah"},
	PrayerOfAzariah:        {"PRAYER_OF_AZARIAH", "Prayer of Azariah"},
	Susanna:                {"SUSANNA", "Susanna"},
	BelAndTheDragon:        {"BEL_AND_THE_DRAGON", "Bel and the Dragon"},
	SongOfTheThreeYoungMen: {"SONG_OF_THE_THREE_YOUNG_MEN", "Song of the Three Young Men"},
	AdditionsToDaniel:      {"ADDITIONS_TO_DANIEL", "Additions to Daniel"},
	Esdras2:                {"ESDRAS_2", "2 Esdras"},
	Maccabees3:             {"MACCABEES_3", "3 Maccabees"},
	Maccabees4:             {"MACCABEES_4", "4 Maccabees"},
	PrayerOfManasseh:       {"PRAYER_OF_MANASSEH", "Prayer of Manasseh"},
}

// Books returns every known book in canonical order.
func Books() []Book {
	out := make([]Book, 0, len(books))
	for b := Genesis; b <= PrayerOfManasseh; b++ {
		out = append(out, b)
	}
	return out
}

// IsValid reports whether b is a member of the enumeration.
func (b Book) IsValid() bool {
	_, ok := books[b]
	return ok
}

// String returns the stable upper-case name (e.g. "SAMUEL_1").
func (b Book) String() string {
	if info, ok := books[b]; ok {
		return info.name
	}
	return fmt.Sprintf("Book(%d)", int(b))
}

// Title returns the English display title (e.g. "1 Samuel").
func (b Book) Title() string {
	return books[b].title
}

// ParseBook resolves a stable name or display title, case-insensitively.
func ParseBook(s string) (Book, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if norm == "" {
		return 0, false
	}
	for b, info := range books {
		if info.name == norm || strings.ToUpper(info.title) == norm {
			return b, true
		}
	}
	return 0, false
}
