package vegapi

import (
	"errors"
	"strings"
	"time"
)

// Config holds the grocery API client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Validate checks the configuration before a client is built.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base URL is required")
	}
	return nil
}
