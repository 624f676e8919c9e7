package config

import (
	"fmt"
	"slices"

	"kbpkit/internal/kbp"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEncodings(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEncodings() error {
	known := kbp.Encodings()
	if c.Parse.Encoding != "" && !slices.Contains(known, c.Parse.Encoding) {
		return fmt.Errorf("parse.encoding %q is not supported (use one of %v)", c.Parse.Encoding, known)
	}
	if c.Write.Encoding != "" && !slices.Contains(known, c.Write.Encoding) {
		return fmt.Errorf("write.encoding %q is not supported (use one of %v)", c.Write.Encoding, known)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}
