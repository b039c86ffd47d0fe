package api

import (
	"fmt"
	"os"
	"time"

	"github.com/FocuswithJustin/osistext/core/errors"
)

// DefaultCacheTTL is how long version listings and stored streams are kept
// in memory.
const DefaultCacheTTL = 5 * time.Minute

// Config holds server configuration.
type Config struct {
	Port              int
	CacheTTL          time.Duration // 0 disables the listing and stream caches
	RateLimitRequests int           // requests per minute per client, 0 = disabled
	RateLimitBurst    int
	Auth              AuthConfig
	TLS               TLSConfig
	AllowedOrigins    []string // CORS origins, empty = allow all
}

// TLSConfig holds HTTPS settings.
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// Validate checks the configuration before the server starts.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if err := ValidateAuthConfig(c.Auth); err != nil {
		return errors.Wrap(err, "invalid auth config")
	}
	if c.TLS.Enabled {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(c.TLS.CertFile); err != nil {
			return errors.Wrap(err, "TLS cert file not found")
		}
		if _, err := os.Stat(c.TLS.KeyFile); err != nil {
			return errors.Wrap(err, "TLS key file not found")
		}
	}
	return nil
}
