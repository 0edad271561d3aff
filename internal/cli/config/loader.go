package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/purin2/sql-practice-tutor/internal/generator"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// dateLayouts are accepted for the generator's calendar keys.
var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// flagKeys maps flag names (snake_cased) to config keys where they differ.
var flagKeys = map[string]string{
	"state":      "state_path",
	"users":      "generator.users",
	"payments":   "generator.payments",
	"events":     "generator.events",
	"payer_rate": "generator.payer_rate",
	"port":       "serve.port",
}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// configIn returns the config file in dir, or "".
func configIn(dir string) string {
	for _, name := range ConfigFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a gendata config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configIn(dir); found != "" {
			return found
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, already absolute or :memory:.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

func defaults() map[string]any {
	g := generator.DefaultConfig()
	return map[string]any{
		"output":     DefaultOutput,
		"format":     DefaultFormat,
		"verbose":    false,
		"state_path": DefaultStateFile,
		"history":    true,
		"vocabulary": "",
		"watch":      false,

		"generator.users":                g.Users,
		"generator.payments":             g.Payments,
		"generator.events":               g.Events,
		"generator.events_per_user_min":  g.EventsPerUserMin,
		"generator.events_per_user_max":  g.EventsPerUserMax,
		"generator.payer_rate":           g.PayerRate,
		"generator.max_payment_attempts": g.MaxPaymentAttempts,
		"generator.max_event_retries":    g.MaxEventRetries,
		"generator.registration_start":   g.RegistrationStart.Format(dateLayouts[0]),
		"generator.registration_end":     g.RegistrationEnd.Format(dateLayouts[0]),
		"generator.closing_date":         g.ClosingDate.Format(dateLayouts[0]),
		"generator.ad_cost_base_min":     g.AdCostBaseMin,
		"generator.ad_cost_base_spread":  g.AdCostBaseSpread,

		"serve.port":  DefaultPort,
		"serve.limit": 0,
	}
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// Without an explicit cfgFile the working directory and its parents are
// searched. Paths read from the config file resolve against the file's
// directory; paths given as flags resolve against the working directory.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFileUsed = ""

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = findConfigUpward(cwd)
	} else if _, err := os.Stat(cfgFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	}
	projectRoot := cwd
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		configFileUsed = cfgFile
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables (GENDATA_ prefix)
	// Transform: GENDATA_STATE_PATH -> state_path, GENDATA_GENERATOR__USERS -> generator.users
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// Paths known before flags are anchored to the project root.
	for _, key := range []string{"output", "state_path", "vocabulary"} {
		if err := k.Set(key, resolvePathRelativeTo(k.String(key), projectRoot)); err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", key, err)
		}
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey(flags)), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToDateHook(),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	if flags != nil {
		for _, name := range []string{"output", "state", "vocabulary"} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				abs, err := filepath.Abs(f.Value.String())
				if err != nil {
					continue
				}
				switch name {
				case "output":
					cfg.Output = abs
				case "state":
					cfg.StatePath = abs
				case "vocabulary":
					cfg.Vocabulary = abs
				}
			}
		}
	}

	return &cfg, nil
}

// flagKey maps explicitly set flags onto config keys.
func flagKey(flags *pflag.FlagSet) func(f *pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		// Only load flags that were explicitly set
		if !f.Changed {
			return "", nil
		}
		// Transform kebab-case to snake_case for config keys
		key := strings.ReplaceAll(f.Name, "-", "_")

		if key == "no_history" {
			noHistory, _ := flags.GetBool(f.Name)
			return "history", !noHistory
		}
		if mapped, ok := flagKeys[key]; ok {
			return mapped, posflag.FlagVal(flags, f)
		}
		return key, posflag.FlagVal(flags, f)
	}
}

// stringToDateHook decodes calendar strings into UTC times.
func stringToDateHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// ConfigKey returns the context key used for storing the loaded config.
func ConfigKey() any {
	return configKey{}
}

// GetConfig retrieves the config from the command context. Without one the
// built-in defaults are returned.
func GetConfig(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}

// Default returns the built-in configuration, relative to the working
// directory.
func Default() *Config {
	return &Config{
		Output:    DefaultOutput,
		Format:    DefaultFormat,
		StatePath: DefaultStateFile,
		History:   true,
		Generator: generator.DefaultConfig(),
		Serve:     ServeConfig{Port: DefaultPort},
	}
}
