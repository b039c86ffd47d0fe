package osis

import (
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/FocuswithJustin/osistext/core/cache"
	"github.com/FocuswithJustin/osistext/core/errors"
	"github.com/FocuswithJustin/osistext/internal/archive"
	"github.com/FocuswithJustin/osistext/internal/logging"
)

// versionPattern restricts version names to what can safely become a file
// name inside the versions directory.
var versionPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// DefaultMaxLoaded is the number of parsed documents a Registry keeps.
const DefaultMaxLoaded = 4

// ValidateVersion normalizes a version name and rejects anything that is not
// a plain lower-case identifier.
func ValidateVersion(version string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(version))
	if !versionPattern.MatchString(v) {
		return "", &errors.ValidationError{Field: "version", Value: version, Message: "must match " + versionPattern.String()}
	}
	return v, nil
}

// Open loads the document for version from dir, lower-casing the version
// name. {version}.xml is tried first, then its .xz and .gz forms.
func Open(version, dir string, opts ...Option) (*Parser, error) {
	v, err := ValidateVersion(version)
	if err != nil {
		return nil, err
	}
	path, err := archive.Find(dir, v)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewDocumentLoad(v, errors.NewNotFound("version", v))
		}
		return nil, errors.NewDocumentLoad(v, errors.NewIO("stat", dir, err))
	}
	return LoadFile(path, append(opts, WithSource(v))...)
}

// Registry loads versions from a directory on demand and keeps the most
// recently used parsers. Evicted parsers are reloaded on the next request;
// their results stay in the shared caches under the document fingerprint.
type Registry struct {
	dir    string
	caches *Caches

	mu      sync.Mutex
	parsers cache.Cache[string, *Parser]
}

// NewRegistry creates a registry over dir holding at most maxLoaded parsers
// (DefaultMaxLoaded when maxLoaded <= 0).
func NewRegistry(dir string, maxLoaded int) *Registry {
	if maxLoaded <= 0 {
		maxLoaded = DefaultMaxLoaded
	}
	return &Registry{
		dir:    dir,
		caches: NewCaches(),
		parsers: cache.NewLRUCache[string, *Parser](cache.Config{
			MaxSize: maxLoaded,
			OnEvict: func(key, _ interface{}) {
				logging.Info("version unloaded", "version", key)
			},
		}),
	}
}

// Dir returns the versions directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Get returns the parser for version, loading it on first use.
func (r *Registry) Get(version string) (*Parser, error) {
	v, err := ValidateVersion(version)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parsers.Get(v); ok {
		return p, nil
	}
	p, err := Open(v, r.dir, WithCache(r.caches))
	if err != nil {
		return nil, err
	}
	r.parsers.Put(v, p)
	return p, nil
}

// Versions lists the version names available in the directory, sorted.
func (r *Registry) Versions() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.NewIO("read", r.dir, err)
	}

	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := archive.Name(e.Name())
		if !ok {
			continue
		}
		name = strings.ToLower(name)
		if versionPattern.MatchString(name) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CacheStats reports the shared result caches and the parser cache.
func (r *Registry) CacheStats() (CacheStats, cache.Stats) {
	return r.caches.Stats(), r.parsers.Stats()
}
