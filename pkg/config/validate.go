package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rhuss/alchemy/pkg/alchemy"
)

// Validate checks the configuration for valid values. An empty
// service.api_key is allowed here; binaries that call the service reject it
// when building the client. Returns all problems joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Service.APIKey != "" {
		if n := utf8.RuneCountInString(c.Service.APIKey); n != alchemy.KeyLength {
			errs = append(errs, fmt.Errorf("service.api_key must be %d characters, got %d", alchemy.KeyLength, n))
		}
	}

	if c.Service.BaseURL == "" {
		errs = append(errs, fmt.Errorf("service.base_url is required"))
	} else if u, err := url.Parse(c.Service.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("service.base_url must be an absolute URL, got %q", c.Service.BaseURL))
	}

	if c.Service.Timeout < 0 {
		errs = append(errs, fmt.Errorf("service.timeout must be >= 0, got %s", c.Service.Timeout))
	}

	if c.Service.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("service.rate_limit must be >= 0, got %g", c.Service.RateLimit))
	}

	if c.Mock.Port <= 0 || c.Mock.Port > 65535 {
		errs = append(errs, fmt.Errorf("mock.port must be between 1 and 65535, got %d", c.Mock.Port))
	}

	if c.Mock.APIKey != "" {
		if n := utf8.RuneCountInString(c.Mock.APIKey); n != alchemy.KeyLength {
			errs = append(errs, fmt.Errorf("mock.api_key must be %d characters, got %d", alchemy.KeyLength, n))
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with /, got %q", c.Observability.Metrics.Path))
	}

	return errors.Join(errs...)
}
