package osis

import (
	"encoding/binary"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cache"
)

// idsKey addresses a result computed from a sorted verse list. ids is the
// packed form from packIDs; keys for the suffixes of one request are
// substrings of the same packed string.
type idsKey struct {
	fingerprint string
	numbers     bool
	ids         string
}

func (k idsKey) suffix(i int) idsKey {
	return idsKey{fingerprint: k.fingerprint, numbers: k.numbers, ids: k.ids[i*idWidth:]}
}

type verseKey struct {
	fingerprint string
	numbers     bool
	id          bible.VerseID
}

type titleKey struct {
	fingerprint string
	book        bible.Book
	short       bool
}

const idWidth = 4

// packIDs encodes ids as fixed-width big-endian words.
func packIDs(ids []bible.VerseID) string {
	buf := make([]byte, idWidth*len(ids))
	for i, id := range ids {
		binary.BigEndian.PutUint32(buf[i*idWidth:], uint32(id))
	}
	return string(buf)
}

// step is one paragraph of an extraction. Steps form an immutable list in
// extraction order; the step cached for a suffix of the id list is the tail
// of every longer list that reaches it.
type step struct {
	book      bible.Book
	chapter   int
	paragraph string
	next      *step
}

// paragraphResult is the text of one structural paragraph and the last
// requested verse it consumed.
type paragraphResult struct {
	text string
	last bible.VerseID
}

// Caches holds memoized extraction results. A zero-eviction cache is
// correct because documents never change once loaded; keys carry the
// document fingerprint so one Caches can serve several parsers.
type Caches struct {
	passages   cache.Cache[idsKey, *bible.Passage]
	steps      cache.Cache[idsKey, *step]
	paragraphs cache.Cache[idsKey, paragraphResult]
	verses     cache.Cache[verseKey, string]
	titles     cache.Cache[titleKey, string]
}

// NewCaches returns an empty set of unbounded caches.
func NewCaches() *Caches {
	return &Caches{
		passages:   cache.NewUnbounded[idsKey, *bible.Passage](),
		steps:      cache.NewUnbounded[idsKey, *step](),
		paragraphs: cache.NewUnbounded[idsKey, paragraphResult](),
		verses:     cache.NewUnbounded[verseKey, string](),
		titles:     cache.NewUnbounded[titleKey, string](),
	}
}

// CacheStats breaks cache activity down by result kind.
type CacheStats struct {
	Passages   cache.Stats `json:"passages"`
	Steps      cache.Stats `json:"steps"`
	Paragraphs cache.Stats `json:"paragraphs"`
	Verses     cache.Stats `json:"verses"`
	Titles     cache.Stats `json:"titles"`
}

// Total sums the per-kind figures.
func (s CacheStats) Total() cache.Stats {
	return s.Passages.Add(s.Steps).Add(s.Paragraphs).Add(s.Verses).Add(s.Titles)
}

// Stats snapshots every cache.
func (c *Caches) Stats() CacheStats {
	return CacheStats{
		Passages:   c.passages.Stats(),
		Steps:      c.steps.Stats(),
		Paragraphs: c.paragraphs.Stats(),
		Verses:     c.verses.Stats(),
		Titles:     c.titles.Stats(),
	}
}
