package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration accepts Go duration strings ("30s", "5m") as well as bare seconds.
type Duration time.Duration

// UnmarshalText lets viper decode "30s", "5m" or a plain number of seconds.
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue returns the underlying time.Duration.
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig holds process-wide settings.
type GlobalConfig struct {
	CacheDir      string   `mapstructure:"CacheDir"`
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	HTTPTimeout   Duration `mapstructure:"HTTPTimeout"`
	FTPTimeout    Duration `mapstructure:"FTPTimeout"`
	UserAgent     string   `mapstructure:"UserAgent"`
	ListenPort    int      `mapstructure:"ListenPort"`
}

// ClickHouseConfig locates the table the ingest command writes to.
type ClickHouseConfig struct {
	Host     string `mapstructure:"ClickHouseHost"`
	Database string `mapstructure:"ClickHouseDatabase"`
	Table    string `mapstructure:"ClickHouseTable"`
}

// TableFQN returns database.table.
func (c ClickHouseConfig) TableFQN() string {
	return c.Database + "." + c.Table
}

// Config is the flat key space read from file and environment.
type Config struct {
	Global     GlobalConfig     `mapstructure:",squash"`
	ClickHouse ClickHouseConfig `mapstructure:",squash"`
}
