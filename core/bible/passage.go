package bible

import "sort"

// Paragraphs is the unordered shape the extraction engine builds:
// book -> chapter -> paragraphs in document order.
type Paragraphs map[Book]map[int][]string

// Add appends paragraphs to a book/chapter.
func (p Paragraphs) Add(book Book, chapter int, paragraphs ...string) {
	chapters, ok := p[book]
	if !ok {
		chapters = make(map[int][]string)
		p[book] = chapters
	}
	chapters[chapter] = append(chapters[chapter], paragraphs...)
}

// Passage is an extraction result in canonical order: books ascending by
// canonical position, chapters ascending, paragraphs in document order.
type Passage struct {
	Books []BookPassage `json:"books"`
}

// BookPassage holds the chapters extracted for one book.
type BookPassage struct {
	Book     Book             `json:"book"`
	Chapters []ChapterPassage `json:"chapters"`
}

// ChapterPassage holds the paragraphs extracted for one chapter.
type ChapterPassage struct {
	Chapter    int      `json:"chapter"`
	Paragraphs []string `json:"paragraphs"`
}

// SortParagraphs canonicalizes the engine's map into a Passage. Paragraph
// order within a chapter is preserved.
func SortParagraphs(p Paragraphs) *Passage {
	out := &Passage{Books: make([]BookPassage, 0, len(p))}

	bookKeys := make([]Book, 0, len(p))
	for b := range p {
		bookKeys = append(bookKeys, b)
	}
	sort.Slice(bookKeys, func(i, j int) bool { return bookKeys[i] < bookKeys[j] })

	for _, b := range bookKeys {
		chapters := p[b]
		chapterKeys := make([]int, 0, len(chapters))
		for c := range chapters {
			chapterKeys = append(chapterKeys, c)
		}
		sort.Ints(chapterKeys)

		bp := BookPassage{Book: b, Chapters: make([]ChapterPassage, 0, len(chapters))}
		for _, c := range chapterKeys {
			paragraphs := make([]string, len(chapters[c]))
			copy(paragraphs, chapters[c])
			bp.Chapters = append(bp.Chapters, ChapterPassage{Chapter: c, Paragraphs: paragraphs})
		}
		out.Books = append(out.Books, bp)
	}
	return out
}

// IsEmpty reports whether the passage holds no books.
func (p *Passage) IsEmpty() bool {
	return p == nil || len(p.Books) == 0
}

// Chapter returns the paragraphs for a book/chapter, or nil.
func (p *Passage) Chapter(book Book, chapter int) []string {
	if p == nil {
		return nil
	}
	for _, bp := range p.Books {
		if bp.Book != book {
			continue
		}
		for _, cp := range bp.Chapters {
			if cp.Chapter == chapter {
				return cp.Paragraphs
			}
		}
	}
	return nil
}

// FirstParagraph returns the first paragraph in canonical order.
func (p *Passage) FirstParagraph() (string, bool) {
	if p == nil {
		return "", false
	}
	for _, bp := range p.Books {
		for _, cp := range bp.Chapters {
			if len(cp.Paragraphs) > 0 {
				return cp.Paragraphs[0], true
			}
		}
	}
	return "", false
}

// Clone returns a deep copy of the passage.
func (p *Passage) Clone() *Passage {
	if p == nil {
		return nil
	}
	out := &Passage{Books: make([]BookPassage, len(p.Books))}
	for i, bp := range p.Books {
		chapters := make([]ChapterPassage, len(bp.Chapters))
		for j, cp := range bp.Chapters {
			chapters[j] = ChapterPassage{Chapter: cp.Chapter, Paragraphs: append([]string(nil), cp.Paragraphs...)}
		}
		out.Books[i] = BookPassage{Book: bp.Book, Chapters: chapters}
	}
	return out
}
