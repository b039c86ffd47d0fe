// Package sqlite selects the SQLite driver used by the compiled stream store.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite, no CGO required
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3 via contrib/sqlite-external
//
// Use Open() instead of sql.Open() so the registered driver name always
// matches the build.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
)

// IsCGO reports whether the build uses mattn/go-sqlite3.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a SQLite database using the build's driver.
func Open(dataSourceName string) (*sql.DB, error) {
	return sql.Open(driverName, dataSourceName)
}

// OpenReadOnly opens a SQLite database file in read-only mode. The path is
// passed as a "file:" URI, which both drivers honour.
func OpenReadOnly(path string) (*sql.DB, error) {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return Open(path + sep + "mode=ro")
}

// Pragmas applies connection settings. Callers that rely on them should
// limit the pool to one connection, since pragmas are per connection.
func Pragmas(db *sql.DB, pragmas ...string) error {
	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			return fmt.Errorf("sqlite: pragma %s: %w", p, err)
		}
	}
	return nil
}

// Info describes the driver compiled into the binary.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// Driver returns the driver compiled into the binary.
func Driver() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
