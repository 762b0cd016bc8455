// Package config resolves loadcompose settings from flags, the config
// file, .env and LOADCOMPOSE_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "LOADCOMPOSE"

type Settings struct {
	APIURL       string        `mapstructure:"api_url"`
	Token        string        `mapstructure:"token"`
	Workspace    string        `mapstructure:"workspace"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MinWebVUs    int           `mapstructure:"min_web_vus"`
	HistoryFile  string        `mapstructure:"history_file"`
	LogLevel     string        `mapstructure:"log_level"`
}

// SetDefaults registers every key so AutomaticEnv can see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("token", "")
	v.SetDefault("workspace", "default")
	v.SetDefault("poll_interval", 10*time.Second)
	v.SetDefault("min_web_vus", 20)
	v.SetDefault("history_file", defaultHistoryFile())
	v.SetDefault("log_level", "warn")
}

// Bind prepares v for environment lookups with the loadcompose prefix.
func Bind(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if s.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	if s.MinWebVUs < 0 {
		s.MinWebVUs = 0
	}
	s.HistoryFile = ExpandHome(s.HistoryFile)
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	return &s, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func defaultHistoryFile() string {
	return filepath.Join("~", ".loadcompose", "history.json")
}
