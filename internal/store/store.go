// Package store persists compiled text streams in SQLite so scripture ranges
// can be served without reparsing the source document.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/cas"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/core/sqlite"
	"github.com/FocuswithJustin/osistext/internal/logging"
	"github.com/FocuswithJustin/osistext/internal/osis"
	"github.com/FocuswithJustin/osistext/internal/scripture"
)

const schema = `
	CREATE TABLE IF NOT EXISTS versions (
		version TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		compiled_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS streams (
		version TEXT NOT NULL,
		kind TEXT NOT NULL,
		content BLOB NOT NULL,
		PRIMARY KEY (version, kind),
		FOREIGN KEY (version) REFERENCES versions(version)
	);
	CREATE TABLE IF NOT EXISTS verse_spans (
		version TEXT NOT NULL,
		kind TEXT NOT NULL,
		verse_id INTEGER NOT NULL,
		start_index INTEGER NOT NULL,
		end_index INTEGER NOT NULL,
		PRIMARY KEY (version, kind, verse_id)
	);
`

// VersionInfo describes one stored version.
type VersionInfo struct {
	Version     string    `json:"version"`
	Fingerprint string    `json:"fingerprint"`
	CompiledAt  time.Time `json:"compiled_at"`
}

// Store is a SQLite database of compiled streams.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	// One connection keeps writes serialized on the pure Go driver.
	db.SetMaxOpenConns(1)
	if err := sqlite.Pragmas(db, "foreign_keys = ON", "busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.NewIO("configure", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewIO("create schema", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenReadOnly opens an existing database for reading. Save fails on a
// read-only store.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	if err := sqlite.Pragmas(db, "busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.NewIO("open", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Save replaces everything stored for version with c. fingerprint must be
// the BLAKE3 digest of the source document.
func (s *Store) Save(ctx context.Context, version, fingerprint string, c *osis.Compiled) (err error) {
	v, err := osis.ValidateVersion(version)
	if err != nil {
		return err
	}
	if !cas.IsValidHash(fingerprint) {
		return &errors.ValidationError{Field: "fingerprint", Value: fingerprint, Message: "not a BLAKE3 digest"}
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewIO("begin", s.path, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		"DELETE FROM verse_spans WHERE version = ?",
		"DELETE FROM streams WHERE version = ?",
		"DELETE FROM versions WHERE version = ?",
	} {
		if _, err = tx.ExecContext(ctx, stmt, v); err != nil {
			return errors.NewIO("delete", s.path, err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO versions (version, fingerprint, compiled_at) VALUES (?, ?, ?)",
		v, fingerprint, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return errors.NewIO("insert version", s.path, err)
	}

	spans, err := tx.PrepareContext(ctx,
		"INSERT INTO verse_spans (version, kind, verse_id, start_index, end_index) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return errors.NewIO("prepare", s.path, err)
	}
	defer spans.Close()

	for _, stream := range c.Streams {
		if stream == nil {
			continue
		}
		kind := stream.Kind.String()
		blob, cerr := compress(stream.Content)
		if cerr != nil {
			return cerr
		}
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO streams (version, kind, content) VALUES (?, ?, ?)", v, kind, blob); err != nil {
			return errors.NewIO("insert stream", s.path, err)
		}
		for id, from := range stream.Starts {
			to, ok := stream.Ends[id]
			if !ok {
				continue
			}
			if _, err = spans.ExecContext(ctx, v, kind, int(id), from, to); err != nil {
				return errors.NewIO("insert span", s.path, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewIO("commit", s.path, err)
	}
	logging.Info("streams saved",
		"version", v,
		"fingerprint", fingerprint,
		"books", len(c.Books),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Bible loads one stream of a stored version.
func (s *Store) Bible(ctx context.Context, version string, kind osis.StreamKind) (*scripture.Bible, error) {
	v, err := osis.ValidateVersion(version)
	if err != nil {
		return nil, err
	}

	var blob []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT content FROM streams WHERE version = ? AND kind = ?", v, kind.String()).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("stream", v+"/"+kind.String())
	}
	if err != nil {
		return nil, errors.NewIO("query stream", s.path, err)
	}
	content, err := decompress(blob)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT verse_id, start_index, end_index FROM verse_spans WHERE version = ? AND kind = ?", v, kind.String())
	if err != nil {
		return nil, errors.NewIO("query spans", s.path, err)
	}
	defer rows.Close()

	starts := make(map[bible.VerseID]int)
	ends := make(map[bible.VerseID]int)
	for rows.Next() {
		var id, from, to int
		if err := rows.Scan(&id, &from, &to); err != nil {
			return nil, errors.NewIO("scan span", s.path, err)
		}
		starts[bible.VerseID(id)] = from
		ends[bible.VerseID(id)] = to
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("read spans", s.path, err)
	}

	return scripture.New(v, content, starts, ends, kind.IsHTML()), nil
}

// Versions lists the stored versions, sorted by name.
func (s *Store) Versions(ctx context.Context) ([]VersionInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version, fingerprint, compiled_at FROM versions ORDER BY version")
	if err != nil {
		return nil, errors.NewIO("query versions", s.path, err)
	}
	defer rows.Close()

	var out []VersionInfo
	for rows.Next() {
		var info VersionInfo
		var compiledAt string
		if err := rows.Scan(&info.Version, &info.Fingerprint, &compiledAt); err != nil {
			return nil, errors.NewIO("scan version", s.path, err)
		}
		info.CompiledAt, _ = time.Parse(time.RFC3339, compiledAt)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("read versions", s.path, err)
	}
	return out, nil
}

// Fingerprint returns the source fingerprint recorded for version.
func (s *Store) Fingerprint(ctx context.Context, version string) (string, error) {
	v, err := osis.ValidateVersion(version)
	if err != nil {
		return "", err
	}
	var fp string
	err = s.db.QueryRowContext(ctx, "SELECT fingerprint FROM versions WHERE version = ?", v).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", errors.NewNotFound("version", v)
	}
	if err != nil {
		return "", errors.NewIO("query fingerprint", s.path, err)
	}
	return fp, nil
}

func compress(content string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "creating xz writer")
	}
	if _, err := io.WriteString(w, content); err != nil {
		return nil, errors.Wrap(err, "compressing stream")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing xz writer")
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) (string, error) {
	r, err := xz.NewReader(bytes.NewReader(blob))
	if err != nil {
		return "", errors.NewParse("xz", "stream", err.Error())
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewParse("xz", "stream", err.Error())
	}
	return string(data), nil
}
