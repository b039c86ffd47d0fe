package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/core/sqlite"
	"github.com/FocuswithJustin/osistext/internal/format"
	"github.com/FocuswithJustin/osistext/internal/logging"
	"github.com/FocuswithJustin/osistext/internal/osis"
	"github.com/FocuswithJustin/osistext/internal/scripture"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Uptime  string     `json:"uptime"`
	Cache   CacheInfo  `json:"cache"`
	Store   bool       `json:"store"`
	Driver  string     `json:"store_driver,omitempty"`
	Loaded  LoadedInfo `json:"loaded_versions"`
}

// CacheInfo sums the extraction caches shared by every loaded version.
type CacheInfo struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// LoadedInfo reports the parsed documents held by the registry.
type LoadedInfo struct {
	Size      int   `json:"size"`
	Evictions int64 `json:"evictions"`
}

// VersionInfo describes a version available from the versions directory,
// the store, or both.
type VersionInfo struct {
	Version     string `json:"version"`
	Source      bool   `json:"source"`
	Compiled    bool   `json:"compiled"`
	Fingerprint string `json:"fingerprint,omitempty"`
	CompiledAt  string `json:"compiled_at,omitempty"`
}

// PassageBook is one book of a passage response.
type PassageBook struct {
	Book     string                 `json:"book"`
	Title    string                 `json:"title"`
	Chapters []bible.ChapterPassage `json:"chapters"`
}

// PassageResponse is returned by /passage.
type PassageResponse struct {
	Version   string        `json:"version"`
	VerseIDs  []int         `json:"verse_ids"`
	Books     []PassageBook `json:"books"`
	Formatted string        `json:"formatted,omitempty"`
}

// VerseResponse is returned by /verse.
type VerseResponse struct {
	Version   string `json:"version"`
	VerseID   int    `json:"verse_id"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// TitleResponse is returned by /title.
type TitleResponse struct {
	Version string `json:"version"`
	Book    string `json:"book"`
	Short   bool   `json:"short"`
	Title   string `json:"title"`
}

// ScriptureResponse is returned by /scripture.
type ScriptureResponse struct {
	Version string `json:"version"`
	Kind    string `json:"kind"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Text    string `json:"text"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	if !requireGET(w, r) {
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "osistext API",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"GET /versions",
			"GET /passage?version=&ids=&numbers=&format=&full_title=",
			"GET /verse?version=&id=&numbers=",
			"GET /title?version=&book=&short=",
			"GET /scripture?version=&kind=&start=&end=",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	stats, parsers := s.registry.CacheStats()
	total := stats.Total()
	var driver string
	if s.store != nil {
		driver = sqlite.Driver().Package
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Cache:   CacheInfo{Hits: total.Hits, Misses: total.Misses, Size: total.Size},
		Store:   s.store != nil,
		Driver:  driver,
		Loaded:  LoadedInfo{Size: parsers.Size, Evictions: parsers.Evictions},
	})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	versions, err := s.versions.GetOrLoad("all", func() ([]VersionInfo, error) {
		return s.listVersions(r)
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondList(w, versions, len(versions))
}

// listVersions merges the versions directory with the store.
func (s *Server) listVersions(r *http.Request) ([]VersionInfo, error) {
	byName := make(map[string]*VersionInfo)
	names, err := s.registry.Versions()
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		byName[n] = &VersionInfo{Version: n, Source: true}
	}

	if s.store != nil {
		stored, err := s.store.Versions(r.Context())
		if err != nil {
			return nil, err
		}
		for _, sv := range stored {
			info, ok := byName[sv.Version]
			if !ok {
				info = &VersionInfo{Version: sv.Version}
				byName[sv.Version] = info
			}
			info.Compiled = true
			info.Fingerprint = sv.Fingerprint
			info.CompiledAt = sv.CompiledAt.Format(time.RFC3339)
		}
	}

	out := make([]VersionInfo, 0, len(byName))
	for _, info := range byName {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *Server) handlePassage(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	q := r.URL.Query()

	parser, err := s.registry.Get(q.Get("version"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	ids, err := osis.ParseVerseList(q.Get("ids"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	numbers, err := boolParam(q.Get("numbers"), "numbers", true)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	fullTitle, err := boolParam(q.Get("full_title"), "full_title", false)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	passage, err := parser.Passage(ids, numbers)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	resp := PassageResponse{Version: parser.Source(), Books: make([]PassageBook, 0, len(passage.Books))}
	for _, id := range bible.SortUnique(ids) {
		resp.VerseIDs = append(resp.VerseIDs, int(id))
	}
	for _, bp := range passage.Books {
		title := parser.ShortTitle(bp.Book)
		if fullTitle {
			title = parser.FullTitle(bp.Book)
		}
		resp.Books = append(resp.Books, PassageBook{Book: bp.Book.String(), Title: title, Chapters: bp.Chapters})
	}
	if f := q.Get("format"); f != "" {
		typ, err := format.ParseType(f)
		if err != nil {
			s.respondErr(w, r, err)
			return
		}
		resp.Formatted = format.Passage(passage, parser, format.Options{Type: typ, FullTitle: fullTitle})
	}
	respond(w, http.StatusOK, resp)
}

func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	q := r.URL.Query()

	parser, err := s.registry.Get(q.Get("version"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	id, err := singleVerse(q.Get("id"), "id")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	numbers, err := boolParam(q.Get("numbers"), "numbers", true)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	text, err := parser.VerseText(id, numbers)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, VerseResponse{
		Version:   parser.Source(),
		VerseID:   int(id),
		Reference: id.String(),
		Text:      text,
	})
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	q := r.URL.Query()

	parser, err := s.registry.Get(q.Get("version"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	book, err := osis.ResolveBook(q.Get("book"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if _, ok := osis.CodeFor(book); !ok {
		s.respondErr(w, r, errors.NewUnknownBookCode(book.String()))
		return
	}
	short, err := boolParam(q.Get("short"), "short", false)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}

	title := parser.FullTitle(book)
	if short {
		title = parser.ShortTitle(book)
	}
	if title == "" {
		s.respondErr(w, r, errors.NewNotFound("title", book.String()))
		return
	}
	respond(w, http.StatusOK, TitleResponse{Version: parser.Source(), Book: book.String(), Short: short, Title: title})
}

func (s *Server) handleScripture(w http.ResponseWriter, r *http.Request) {
	if !requireGET(w, r) {
		return
	}
	if s.store == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "No compiled stream store is configured")
		return
	}
	q := r.URL.Query()

	version, err := osis.ValidateVersion(q.Get("version"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	kind := osis.StreamHTML
	if k := q.Get("kind"); k != "" {
		if kind, err = osis.ParseStreamKind(k); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}
	start, err := singleVerse(q.Get("start"), "start")
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	end := start
	if e := q.Get("end"); e != "" {
		if end, err = singleVerse(e, "end"); err != nil {
			s.respondErr(w, r, err)
			return
		}
	}

	b, err := s.streams.GetOrLoad(streamKey{version, kind}, func() (*scripture.Bible, error) {
		return s.store.Bible(r.Context(), version, kind)
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	text, err := b.Scripture(start, end)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, ScriptureResponse{
		Version: version,
		Kind:    kind.String(),
		Start:   int(start),
		End:     int(end),
		Text:    text,
	})
}

// singleVerse resolves a parameter that must name exactly one verse.
func singleVerse(raw, field string) (bible.VerseID, error) {
	ids, err := osis.ParseVerseList(raw)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, &errors.ValidationError{Field: field, Value: raw, Message: "must name a single verse"}
	}
	return ids[0], nil
}

func boolParam(raw, field string, def bool) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &errors.ValidationError{Field: field, Value: raw, Message: "must be a boolean"}
	}
	return v, nil
}

func requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	return false
}

// errorStatus maps the error taxonomy onto HTTP statuses.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, errors.ErrUnsupported):
		return http.StatusUnprocessableEntity, "UNSUPPORTED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "Internal server error"
	}
	respondError(w, status, code, msg)
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, data interface{}, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: total, Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
