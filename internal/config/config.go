// Package config loads the composition engine's ambient settings — series
// default, fetch timeout, installer command, schema path, logging — with
// flags > env > file > defaults precedence, the same layering the teacher
// applies via viper.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the engine's resolved ambient configuration.
type Config struct {
	Series          string        `mapstructure:"series"`
	OutputDir       string        `mapstructure:"output_dir"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
	// InstallerBinary and InstallerExt are loaded but not applied: the
	// installer tactic reads tactic.InstallerCommand and
	// tactic.InstallerExtension.
	InstallerBinary string        `mapstructure:"installer_binary"`
	InstallerExt    string        `mapstructure:"installer_ext"`
	SchemaPath      string        `mapstructure:"schema_path"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	NoColor         bool          `mapstructure:"no_color"`
	Force           bool          `mapstructure:"force"`
	RegistryURL     string        `mapstructure:"registry_url"`
}

// Default returns the engine's built-in defaults (spec.md §6's `-s/--series`
// default of "trusty", plus SPEC_FULL's ambient-stack additions).
func Default() Config {
	return Config{
		Series:          "trusty",
		OutputDir:       ".",
		FetchTimeout:    30 * time.Second,
		InstallerBinary: "pip",
		InstallerExt:    ".pkgspec",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Loader assembles a Config from defaults, an optional config file, the
// process environment, and CLI flag overrides, in that precedence order.
type Loader struct {
	appName    string
	configPath string
}

// NewLoader builds a Loader. configPath may be empty, in which case no file
// layer is consulted.
func NewLoader(appName, configPath string) *Loader {
	return &Loader{appName: appName, configPath: configPath}
}

// Load returns the layered configuration: defaults, then file (if present),
// then environment variables prefixed with the upper-cased app name, then
// the given flag overrides.
func (l *Loader) Load(flags map[string]interface{}) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("series", def.Series)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("fetch_timeout", def.FetchTimeout)
	v.SetDefault("installer_binary", def.InstallerBinary)
	v.SetDefault("installer_ext", def.InstallerExt)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)

	if l.configPath != "" {
		if _, statErr := os.Stat(l.configPath); statErr == nil {
			v.SetConfigFile(l.configPath)
			if err := v.ReadInConfig(); err != nil {
				if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
					return Config{}, err
				}
			}
		}
	}

	v.SetEnvPrefix(strings.ToUpper(l.appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range flags {
		if val == nil {
			continue
		}
		switch v2 := val.(type) {
		case string:
			if v2 == "" {
				continue
			}
		case bool:
			if !v2 {
				continue
			}
		}
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
