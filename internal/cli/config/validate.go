package config

import (
	"fmt"
	"slices"
)

// Formats accepted by --format.
var Formats = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("invalid format %q\nHint: use one of %v", c.Format, Formats)
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d is out of range", c.Serve.Port)
	}
	if c.Serve.Limit < 0 {
		return fmt.Errorf("serve.limit must not be negative")
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	return nil
}
