// Package config loads settings from a user config file and the
// environment. File values live in $XDG_CONFIG_HOME/timeledger/
// timeledger.yml; any key can be overridden with a TIMELEDGER_* env var.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the app wires from.
type Config struct {
	// DataDir is where the local blob store keeps projects, timer
	// state and the pending-session cache.
	DataDir string

	Google struct {
		ClientID     string
		ClientSecret string
		RefreshToken string
		SheetURL     string
	}

	MySQL struct {
		DSN string // when set, the MySQL ledger is used instead of Sheets
	}

	Timezone string
}

// Load reads the config file (created on first run) and the environment.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("timeledger")
	v.SetConfigType("yaml")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		if runtime.GOOS == "windows" {
			configHome = filepath.Join(homeDir, "AppData", "Roaming")
		} else {
			configHome = filepath.Join(homeDir, ".config")
		}
	}
	configDir := filepath.Join(configHome, "timeledger")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Config{}, err
	}
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("timeledger")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, _ := os.UserHomeDir()
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	v.SetDefault("data_dir", filepath.Join(dataHome, "timeledger"))
	v.SetDefault("timezone", "Local")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		// First run: write the defaults so users have a file to edit.
		if err := v.SafeWriteConfig(); err != nil {
			var exists viper.ConfigFileAlreadyExistsError
			if !errors.As(err, &exists) {
				return Config{}, err
			}
		}
	}

	var cfg Config
	cfg.DataDir = v.GetString("data_dir")
	cfg.Google.ClientID = v.GetString("google.client_id")
	cfg.Google.ClientSecret = v.GetString("google.client_secret")
	cfg.Google.RefreshToken = v.GetString("google.refresh_token")
	cfg.Google.SheetURL = v.GetString("google.sheet_url")
	cfg.MySQL.DSN = v.GetString("mysql.dsn")
	cfg.Timezone = v.GetString("timezone")
	return cfg, nil
}
