package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cas"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/internal/osis"
)

const doc = `<osis xmlns="http://www.bibletechnologies.net/2003/OSIS/namespace"><osisText>
<div type="book" osisID="Gen"><chapter osisID="Gen.1"/>
<p><verse osisID="Gen.1.1"/>In the beginning. <verse osisID="Gen.1.2"/>And the earth.</p>
</div></osisText></osis>`

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "streams.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func compile(t *testing.T) (*osis.Parser, *osis.Compiled) {
	t.Helper()
	p, err := osis.Load(strings.NewReader(doc), osis.WithSource("kjv"))
	if err != nil {
		t.Fatal(err)
	}
	c, err := p.Compile()
	if err != nil {
		t.Fatal(err)
	}
	return p, c
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	p, c := compile(t)

	if err := s.Save(ctx, "KJV", p.Fingerprint(), c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	for _, kind := range osis.StreamKinds() {
		t.Run(kind.String(), func(t *testing.T) {
			b, err := s.Bible(ctx, "kjv", kind)
			if err != nil {
				t.Fatalf("Bible() error = %v", err)
			}
			if b.Len() != len(c.Stream(kind).Content) || b.IsHTML() != kind.IsHTML() {
				t.Errorf("Bible() len = %d html = %v", b.Len(), b.IsHTML())
			}
		})
	}

	b, err := s.Bible(ctx, "kjv", osis.StreamPlainText)
	if err != nil {
		t.Fatal(err)
	}
	got, err := b.Scripture(bible.MustVerseID(bible.Genesis, 1, 2), 0)
	if err != nil || got != "2. And the earth." {
		t.Errorf("Scripture() = %q, %v", got, err)
	}
}

func TestSave_Replaces(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, c := compile(t)

	first, second := cas.Blake3Hash([]byte("first")), cas.Blake3Hash([]byte("second"))
	if err := s.Save(ctx, "kjv", first, c); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "kjv", second, c); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if err := s.Save(ctx, "asv", first, c); err != nil {
		t.Fatal(err)
	}

	fp, err := s.Fingerprint(ctx, "kjv")
	if err != nil || fp != second {
		t.Errorf("Fingerprint() = %q, %v", fp, err)
	}

	versions, err := s.Versions(ctx)
	if err != nil {
		t.Fatalf("Versions() error = %v", err)
	}
	if len(versions) != 2 || versions[0].Version != "asv" || versions[1].Version != "kjv" {
		t.Fatalf("Versions() = %+v", versions)
	}
	if versions[1].CompiledAt.IsZero() {
		t.Error("CompiledAt not recorded")
	}
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	if _, err := s.Fingerprint(ctx, "kjv"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Fingerprint() error = %v", err)
	}
	if _, err := s.Bible(ctx, "kjv", osis.StreamHTML); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Bible() error = %v", err)
	}
	if _, err := s.Bible(ctx, "../kjv", osis.StreamHTML); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Bible(bad name) error = %v", err)
	}

	_, c := compile(t)
	if err := s.Save(ctx, "kjv", "not-a-digest", c); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Save(bad fingerprint) error = %v", err)
	}
}

func TestCompression(t *testing.T) {
	text := strings.Repeat("In the beginning God created the heaven and the earth. ", 50)
	blob, err := compress(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) >= len(text) {
		t.Errorf("compressed %d bytes to %d", len(text), len(blob))
	}
	back, err := decompress(blob)
	if err != nil || back != text {
		t.Errorf("decompress() mismatch, err = %v", err)
	}
	if _, err := decompress([]byte("not xz")); err == nil {
		t.Error("decompress(garbage) should fail")
	}
}

func TestOpenReadOnly(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "streams.db")
	rw, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	p, c := compile(t)
	if err := rw.Save(ctx, "kjv", p.Fingerprint(), c); err != nil {
		t.Fatal(err)
	}
	rw.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly() error = %v", err)
	}
	defer ro.Close()

	if fp, err := ro.Fingerprint(ctx, "kjv"); err != nil || fp != p.Fingerprint() {
		t.Errorf("Fingerprint() = %q, %v", fp, err)
	}
	if err := ro.Save(ctx, "kjv", p.Fingerprint(), c); err == nil {
		t.Error("Save() on a read-only store should fail")
	}
}
