package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional YAML config file. Every field is optional;
// environment variables always take precedence over file values.
type fileConfig struct {
	ListenPort      string `yaml:"listen_port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`

	LogLevel  string `yaml:"log_level"`
	PrettyLog *bool  `yaml:"pretty_log"`

	StatusURL    string `yaml:"status_url"`
	PollInterval string `yaml:"poll_interval"`
	FetchTimeout string `yaml:"fetch_timeout"`

	MaintenanceMode *bool `yaml:"maintenance_mode"`

	TrustProxy *bool `yaml:"trust_proxy"`
}

// loadFile parses the YAML config file at path. An empty path is fine (env-only
// deployments); a path that exists but does not parse is a startup failure.
func loadFile(path string) *fileConfig {
	fc := &fileConfig{}
	if path == "" {
		return fc
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Failed to read config file %s: %v", path, err))
	}

	if err := yaml.Unmarshal(data, fc); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Failed to parse config file %s: %v", path, err))
	}

	return fc
}
