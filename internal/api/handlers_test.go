package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/internal/osis"
	"github.com/FocuswithJustin/osistext/internal/store"
)

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %q: %v", w.Body.String(), err)
	}
	return resp
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Fatalf("request failed: %d %+v", w.Code, resp.Error)
	}
	var data T
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decoding data: %v", err)
	}
	return data
}

// newTestServer serves the kjv fixture from a temp versions directory. With
// compiled set, a store holding kjv and a compiled-only asv is attached.
func newTestServer(t *testing.T, cfg Config, compiled bool) *Server {
	t.Helper()
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("..", "osis", "testdata", "kjv.xml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "kjv.xml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	registry := osis.NewRegistry(dir, 2)

	var st *store.Store
	if compiled {
		st, err = store.Open(filepath.Join(t.TempDir(), "streams.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { st.Close() })

		p, err := registry.Get("kjv")
		if err != nil {
			t.Fatal(err)
		}
		c, err := p.Compile()
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range []string{"kjv", "asv"} {
			if err := st.Save(context.Background(), v, p.Fingerprint(), c); err != nil {
				t.Fatal(err)
			}
		}
	}

	s, err := NewServer(cfg, registry, st)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHandlePassage(t *testing.T) {
	h := newTestServer(t, Config{}, false).Handler()

	w := get(h, "/passage?version=KJV&ids=Gen.2.1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeData[PassageResponse](t, w)
	if got.Version != "kjv" || len(got.Books) != 1 {
		t.Fatalf("response = %+v", got)
	}
	b := got.Books[0]
	if b.Book != "GENESIS" || b.Title != "Genesis" || len(b.Chapters) != 1 || b.Chapters[0].Chapter != 2 {
		t.Fatalf("book = %+v", b)
	}
	if p := b.Chapters[0].Paragraphs; len(p) != 1 || p[0] != "1. Thus the heavens and the earth were finished." {
		t.Errorf("paragraphs = %q", p)
	}
	if len(got.VerseIDs) != 1 || got.VerseIDs[0] != int(bible.MustVerseID(bible.Genesis, 2, 1)) {
		t.Errorf("verse_ids = %v", got.VerseIDs)
	}
}

func TestHandlePassage_Options(t *testing.T) {
	h := newTestServer(t, Config{}, false).Handler()

	got := decodeData[PassageResponse](t, get(h, "/passage?version=kjv&ids=1002001&numbers=false&format=text&full_title=true"))
	want := "THE FIRST BOOK OF MOSES, CALLED GENESIS\n\nChapter 2\n\n   Thus the heavens and the earth were finished.\n"
	if got.Formatted != want {
		t.Errorf("formatted =\n%q\nwant\n%q", got.Formatted, want)
	}
	if got.Books[0].Title != "THE FIRST BOOK OF MOSES, CALLED GENESIS" {
		t.Errorf("title = %q", got.Books[0].Title)
	}
}

func TestHandleVerse(t *testing.T) {
	h := newTestServer(t, Config{}, false).Handler()

	got := decodeData[VerseResponse](t, get(h, "/verse?version=kjv&id=Gen.2.2&numbers=false"))
	if got.Text != "And on the seventh day God ended his work." {
		t.Errorf("text = %q", got.Text)
	}
	if got.VerseID != 1002002 || got.Reference != "Genesis 2:2" {
		t.Errorf("response = %+v", got)
	}
}

func TestHandleTitle(t *testing.T) {
	h := newTestServer(t, Config{}, false).Handler()

	got := decodeData[TitleResponse](t, get(h, "/title?version=kjv&book=Gen"))
	if got.Title != "THE FIRST BOOK OF MOSES, CALLED GENESIS" || got.Book != "GENESIS" || got.Short {
		t.Errorf("full title = %+v", got)
	}
	got = decodeData[TitleResponse](t, get(h, "/title?version=kjv&book=john&short=true"))
	if got.Title != "John" {
		t.Errorf("short title = %+v", got)
	}
}

func TestHandleScripture(t *testing.T) {
	h := newTestServer(t, Config{CacheTTL: DefaultCacheTTL}, true).Handler()

	tests := []struct {
		target string
		want   string
	}{
		{"/scripture?version=kjv&kind=plain_text&start=Gen.2.2", "2. And on the seventh day God ended his work."},
		{"/scripture?version=kjv&start=Gen.2.1&end=Gen.2.2",
			"<p><sup>1</sup> Thus the heavens and the earth were finished. <sup>2</sup> And on the seventh day God ended his work.</p>"},
		{"/scripture?version=asv&kind=plain_text_readers&start=1002001&end=1002001", "Thus the heavens and the earth were finished."},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got := decodeData[ScriptureResponse](t, get(h, tt.target))
			if got.Text != tt.want {
				t.Errorf("text =\n%q\nwant\n%q", got.Text, tt.want)
			}
		})
	}
}

func TestHandleVersions(t *testing.T) {
	h := newTestServer(t, Config{CacheTTL: DefaultCacheTTL}, true).Handler()

	w := get(h, "/versions")
	got := decodeData[[]VersionInfo](t, w)
	if len(got) != 2 {
		t.Fatalf("versions = %+v", got)
	}
	if got[0].Version != "asv" || got[0].Source || !got[0].Compiled {
		t.Errorf("asv = %+v", got[0])
	}
	if got[1].Version != "kjv" || !got[1].Source || !got[1].Compiled || got[1].Fingerprint == "" {
		t.Errorf("kjv = %+v", got[1])
	}
	if resp := decodeResponse(t, w); resp.Meta == nil || resp.Meta.Total != 2 {
		t.Errorf("meta = %+v", resp.Meta)
	}
}

func TestHandlers_Errors(t *testing.T) {
	withStore := newTestServer(t, Config{}, true).Handler()
	noStore := newTestServer(t, Config{}, false).Handler()

	tests := []struct {
		name       string
		h          http.Handler
		target     string
		wantStatus int
		wantCode   string
	}{
		{"missing version", noStore, "/passage?ids=Gen.1.1", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown version", noStore, "/passage?version=asv&ids=Gen.1.1", http.StatusNotFound, "NOT_FOUND"},
		{"bad ids", noStore, "/passage?version=kjv&ids=genesis", http.StatusBadRequest, "INVALID_INPUT"},
		{"oversized range", noStore, "/passage?version=kjv&ids=Gen.1.1-2000000000", http.StatusBadRequest, "INVALID_INPUT"},
		{"unsupported book", noStore, "/passage?version=kjv&ids=Bar.1.1", http.StatusUnprocessableEntity, "UNSUPPORTED"},
		{"verse not in document", noStore, "/passage?version=kjv&ids=Matt.1.1", http.StatusNotFound, "NOT_FOUND"},
		{"bad flag", noStore, "/passage?version=kjv&ids=Gen.1.1&numbers=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", noStore, "/passage?version=kjv&ids=Gen.1.1&format=pdf", http.StatusBadRequest, "INVALID_INPUT"},
		{"verse range", noStore, "/verse?version=kjv&id=Gen.1.1-2", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown book", noStore, "/title?version=kjv&book=Hezekiah", http.StatusBadRequest, "INVALID_INPUT"},
		{"unmapped book title", noStore, "/title?version=kjv&book=Baruch", http.StatusUnprocessableEntity, "UNSUPPORTED"},
		{"missing title", noStore, "/title?version=kjv&book=Matthew", http.StatusNotFound, "NOT_FOUND"},
		{"no store", noStore, "/scripture?version=kjv&start=Gen.1.1", http.StatusNotFound, "NOT_FOUND"},
		{"bad kind", withStore, "/scripture?version=kjv&kind=pdf&start=Gen.1.1", http.StatusBadRequest, "INVALID_INPUT"},
		{"missing start", withStore, "/scripture?version=kjv", http.StatusBadRequest, "INVALID_INPUT"},
		{"not compiled", withStore, "/scripture?version=web&start=Gen.1.1", http.StatusNotFound, "NOT_FOUND"},
		{"reversed range", withStore, "/scripture?version=kjv&start=Gen.2.2&end=Gen.2.1", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown endpoint", noStore, "/books", http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(tt.h, tt.target)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			resp := decodeResponse(t, w)
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, Config{}, false).Handler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/passage?version=kjv&ids=Gen.1.1", nil))
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("status = %d, Allow = %q", w.Code, w.Header().Get("Allow"))
	}
}

func TestErrorStatus_Internal(t *testing.T) {
	status, code := errorStatus(context.Canceled)
	if status != http.StatusInternalServerError || code != "INTERNAL_ERROR" {
		t.Errorf("errorStatus() = %d, %q", status, code)
	}
}
