package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/version"
)

// EnvConfigPath names the environment variable consulted when no config file
// is passed explicitly.
const EnvConfigPath = "TENGEN_CONFIG"

// envKeys maps every configuration key to its environment override.
var envKeys = map[string]string{
	"CacheDir":           cache.EnvDir,
	"LogLevel":           "TENGEN_LOG_LEVEL",
	"LogFilePath":        "TENGEN_LOG_FILE_PATH",
	"LogMaxSize":         "TENGEN_LOG_MAX_SIZE",
	"LogMaxBackups":      "TENGEN_LOG_MAX_BACKUPS",
	"LogCompress":        "TENGEN_LOG_COMPRESS",
	"HTTPTimeout":        "TENGEN_HTTP_TIMEOUT",
	"FTPTimeout":         "TENGEN_FTP_TIMEOUT",
	"UserAgent":          "TENGEN_USER_AGENT",
	"ListenPort":         "TENGEN_LISTEN_PORT",
	"ClickHouseHost":     "TENGEN_CLICKHOUSE_HOST",
	"ClickHouseDatabase": "TENGEN_CLICKHOUSE_DATABASE",
	"ClickHouseTable":    "TENGEN_CLICKHOUSE_TABLE",
}

// Load reads the optional config file at path (falling back to
// $TENGEN_CONFIG), applies environment overrides and defaults, and validates
// the result. An empty path with no TENGEN_CONFIG set yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absCache, err := filepath.Abs(cfg.Global.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache directory: %w", err)
	}
	cfg.Global.CacheDir = absCache

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CacheDir", "")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("HTTPTimeout", "60s")
	v.SetDefault("FTPTimeout", "60s")
	v.SetDefault("UserAgent", "")
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("ClickHouseHost", "127.0.0.1:9000")
	v.SetDefault("ClickHouseDatabase", "default")
	v.SetDefault("ClickHouseTable", "solar_ssi")
}

func applyGlobalDefaults(g *GlobalConfig) {
	g.CacheDir = cache.ResolveRoot(g.CacheDir)
	if g.HTTPTimeout.DurationValue() == 0 {
		g.HTTPTimeout = Duration(60 * time.Second)
	}
	if g.FTPTimeout.DurationValue() == 0 {
		g.FTPTimeout = Duration(60 * time.Second)
	}
	if g.UserAgent == "" {
		g.UserAgent = version.Tool + "/" + version.Version
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("invalid duration: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported duration type: %T", v)
		}
	}
}
