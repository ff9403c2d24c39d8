package config

import (
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	g := c.Global
	if strings.TrimSpace(g.CacheDir) == "" {
		return newFieldError("CacheDir", "must not be empty")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("LogLevel", "must be one of trace|debug|info|warn|error|fatal|panic")
	}
	if g.LogMaxSize < 0 {
		return newFieldError("LogMaxSize", "must not be negative")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("LogMaxBackups", "must not be negative")
	}
	if g.HTTPTimeout.DurationValue() <= 0 {
		return newFieldError("HTTPTimeout", "must be positive")
	}
	if g.FTPTimeout.DurationValue() <= 0 {
		return newFieldError("FTPTimeout", "must be positive")
	}
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "must be within 1-65535")
	}

	ch := c.ClickHouse
	if ch.Host == "" {
		return newFieldError("ClickHouseHost", "must not be empty")
	}
	if ch.Database == "" || strings.ContainsAny(ch.Database, " .`") {
		return newFieldError("ClickHouseDatabase", "must be a plain identifier")
	}
	if ch.Table == "" || strings.ContainsAny(ch.Table, " .`") {
		return newFieldError("ClickHouseTable", "must be a plain identifier")
	}
	return nil
}
