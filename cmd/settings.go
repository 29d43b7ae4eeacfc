package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envKeyReplacer maps "eodhd.api_key" to MARKETWATCH_EODHD_API_KEY.
var envKeyReplacer = strings.NewReplacer(".", "_")

// settings holds the application settings, distinct from the portfolio Config
// which is event-sourced. Settings cover the machine-local concerns: API key,
// cache location, logging.
var settings = newSettings()

// homeDir returns the marketwatch home, MARKETWATCH_HOME or ~/.marketwatch.
func homeDir() string {
	if home := os.Getenv("MARKETWATCH_HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".marketwatch"
	}
	return filepath.Join(home, ".marketwatch")
}

func newSettings() *viper.Viper {
	v := viper.New()

	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(homeDir())

	v.SetDefault("eodhd.api_key", "")
	v.SetDefault("cache.dir", "")
	v.SetDefault("portfolio.dir", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", filepath.Join(homeDir(), "logs", "mw.log"))

	v.SetEnvPrefix("MARKETWATCH")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	// A missing settings file is not an error, defaults and env apply.
	_ = v.ReadInConfig()
	return v
}
