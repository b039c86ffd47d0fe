// Package sqliteexternal provides the optional CGO SQLite driver for the
// compiled stream store.
//
// To use the CGO driver (github.com/mattn/go-sqlite3), build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/osistext
//
// The default build uses modernc.org/sqlite and needs no C toolchain; see
// github.com/FocuswithJustin/osistext/core/sqlite.
package sqliteexternal
