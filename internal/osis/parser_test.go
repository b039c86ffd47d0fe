package osis

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cas"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/ulikunitz/xz"
)

const osisNamespace = "http://www.bibletechnologies.net/2003/OSIS/namespace"

const minimalDoc = `<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace"><osisText><div type="book" osisID="Gen"><p><verse osisID="Gen.1.1"/>Other text.</p></div></osisText></osis>`

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "kjv.xml"))
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	return data
}

func loadFixture(t *testing.T, opts ...Option) *Parser {
	t.Helper()
	p, err := Load(bytes.NewReader(fixtureBytes(t)), append([]Option{WithSource("kjv")}, opts...)...)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return p
}

func TestLoad(t *testing.T) {
	data := fixtureBytes(t)
	p := loadFixture(t)

	if p.Namespace() != osisNamespace {
		t.Errorf("Namespace() = %q", p.Namespace())
	}
	if p.Fingerprint() != cas.Blake3Hash(data) {
		t.Errorf("Fingerprint() = %q; want digest of the source bytes", p.Fingerprint())
	}
	if p.Source() != "kjv" {
		t.Errorf("Source() = %q", p.Source())
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"mismatched tags", "<osis><p></osis>"},
		{"text only", "no markup here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), WithSource("broken"))
			var dle *errors.DocumentLoadError
			if !errors.As(err, &dle) {
				t.Fatalf("Load() error = %v; want DocumentLoadError", err)
			}
			if dle.Source != "broken" {
				t.Errorf("Source = %q", dle.Source)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	p, err := LoadFile(filepath.Join("testdata", "kjv.xml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !strings.HasSuffix(p.Source(), "kjv.xml") {
		t.Errorf("Source() = %q", p.Source())
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.xml"))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("LoadFile(absent) error = %v; want not found", err)
	}
}

func TestTitles(t *testing.T) {
	p := loadFixture(t)

	tests := []struct {
		book  bible.Book
		full  string
		short string
	}{
		{bible.Genesis, "THE FIRST BOOK OF MOSES, CALLED GENESIS", "Genesis"},
		{bible.John, "THE GOSPEL ACCORDING TO ST. JOHN", "John"},
		{bible.Matthew, "", ""},
		{bible.Baruch, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.book.String(), func(t *testing.T) {
			if got := p.FullTitle(tt.book); got != tt.full {
				t.Errorf("FullTitle() = %q; want %q", got, tt.full)
			}
			if got := p.ShortTitle(tt.book); got != tt.short {
				t.Errorf("ShortTitle() = %q; want %q", got, tt.short)
			}
		})
	}

	p.FullTitle(bible.Genesis)
	if hits := p.CacheStats().Titles.Hits; hits != 1 {
		t.Errorf("title cache hits = %d; want 1", hits)
	}
}

func TestBookTable(t *testing.T) {
	if code, ok := CodeFor(bible.Samuel1); !ok || code != "1Sam" {
		t.Errorf("CodeFor(Samuel1) = %q, %v", code, ok)
	}
	if code, ok := CodeFor(bible.Ecclesiasticus); !ok || code != "Sir" {
		t.Errorf("CodeFor(Ecclesiasticus) = %q, %v", code, ok)
	}
	if _, ok := CodeFor(bible.Baruch); ok {
		t.Error("Baruch should be unsupported")
	}

	if b, err := BookFor("Rev"); err != nil || b != bible.Revelation {
		t.Errorf("BookFor(Rev) = %v, %v", b, err)
	}
	_, err := BookFor("Bar")
	var ube *errors.UnknownBookCodeError
	if !errors.As(err, &ube) || ube.Code != "Bar" {
		t.Errorf("BookFor(Bar) error = %v", err)
	}

	books := SupportedBooks()
	if len(books) != 72 {
		t.Errorf("SupportedBooks() has %d books; want 72", len(books))
	}
	for _, b := range books {
		code, _ := CodeFor(b)
		if back, err := BookFor(code); err != nil || back != b {
			t.Errorf("round trip %v -> %q -> %v, %v", b, code, back, err)
		}
	}
}

func TestVerseIDOf(t *testing.T) {
	doc := `<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace"><p>` +
		`<verse osisID="1Sam.3.10"/><verse osisID=".."/><verse/><verse osisID="Bar.1.1"/><verse osisID="Gen.1.1-3"/>` +
		`</p></osis>`
	p, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	verses, err := p.doc.XPath("//verse")
	if err != nil {
		t.Fatal(err)
	}
	if len(verses) != 5 {
		t.Fatalf("found %d verses", len(verses))
	}

	if id, ok := verseIDOf(verses[0]); !ok || id != bible.MustVerseID(bible.Samuel1, 3, 10) {
		t.Errorf("verseIDOf(1Sam.3.10) = %v, %v", id, ok)
	}
	for i, n := range verses[1:] {
		if id, ok := verseIDOf(n); ok {
			t.Errorf("verse %d decoded to %v; want no id", i+1, id)
		}
	}
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	data := fixtureBytes(t)
	for _, name := range []string{"kjv.xml", "web.xml", "Bad Name.xml", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "asv.xml"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry(dir, 1)
	versions, err := r.Versions()
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if strings.Join(versions, ",") != "kjv,web" {
		t.Errorf("Versions() = %v; want [kjv web]", versions)
	}

	kjv, err := r.Get("KJV")
	if err != nil {
		t.Fatalf("Get(KJV) error = %v", err)
	}
	again, _ := r.Get("kjv")
	if kjv != again {
		t.Error("Get() should return the loaded parser")
	}
	if kjv.Source() != "kjv" {
		t.Errorf("Source() = %q", kjv.Source())
	}

	if _, err := r.Get("missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get(missing) error = %v; want not found", err)
	}
	if _, err := r.Get("../kjv"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Get(../kjv) error = %v; want invalid input", err)
	}

	if _, err := r.Get("web"); err != nil {
		t.Fatalf("Get(web) error = %v", err)
	}
	if _, parsers := r.CacheStats(); parsers.Evictions != 1 || parsers.Size != 1 {
		t.Errorf("parser cache = %+v; want one eviction", parsers)
	}
}

func TestOpen(t *testing.T) {
	p, err := Open("KJV", "testdata")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	text, err := p.VerseText(bible.MustVerseID(bible.Genesis, 2, 2), false)
	if err != nil || text != "And on the seventh day God ended his work." {
		t.Errorf("VerseText() = %q, %v", text, err)
	}

	if _, err := Open("", "testdata"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Open(\"\") error = %v", err)
	}
}

func TestOpen_Compressed(t *testing.T) {
	dir := t.TempDir()
	data := fixtureBytes(t)

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"kjv.xml.xz", "asv.xml.xz"} {
		if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "asv.xml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Open("kjv", dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if p.Fingerprint() != cas.Blake3Hash(data) {
		t.Error("fingerprint should cover the decompressed document")
	}
	if got := p.ShortTitle(bible.Genesis); got != "Genesis" {
		t.Errorf("ShortTitle() = %q", got)
	}

	versions, err := NewRegistry(dir, 0).Versions()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(versions, ",") != "asv,kjv" {
		t.Errorf("Versions() = %v; want [asv kjv]", versions)
	}
}
