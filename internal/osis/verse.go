package osis

import (
	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cache"
	"github.com/FocuswithJustin/osistext/core/errors"
)

// VerseText returns the first paragraph of a single-verse extraction. A
// verse the document does not contain yields "" without error; a zero id is
// an *errors.InvalidVerseError.
func (p *Parser) VerseText(id bible.VerseID, includeVerseNumbers bool) (string, error) {
	if id == 0 {
		return "", errors.NewInvalidVerse(0, "verse id cannot be empty")
	}

	key := verseKey{fingerprint: p.fingerprint, numbers: includeVerseNumbers, id: id}
	return cache.GetOrCompute(p.caches.verses, key, func() (string, error) {
		passage, err := p.Passage([]bible.VerseID{id}, includeVerseNumbers)
		if errors.Is(err, errors.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		text, _ := passage.FirstParagraph()
		return text, nil
	})
}
