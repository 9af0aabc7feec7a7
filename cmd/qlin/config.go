package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the qlin configuration file (~/.config/qlin/config.yaml).
// CLI flags always win over config values.
type Config struct {
	KernelPath    string `yaml:"kernel_path"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	ServerAddress string `yaml:"server_address"`

	// Prefer holds default backend preference flags for `qlin select`.
	Prefer PreferConfig `yaml:"prefer"`
}

// PreferConfig mirrors the selector preference flags. disable_exllama
// is a pointer so an absent key stays distinguishable from false.
type PreferConfig struct {
	UseTriton        bool  `yaml:"use_triton"`
	UseTritonV2      bool  `yaml:"use_tritonv2"`
	UseQigen         bool  `yaml:"use_qigen"`
	UseMarlin        bool  `yaml:"use_marlin"`
	UseIPEX          bool  `yaml:"use_ipex"`
	DisableExllama   *bool `yaml:"disable_exllama"`
	DisableExllamaV2 bool  `yaml:"disable_exllamav2"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "qlin", "config.yaml")
}

// loadConfig reads the config file. A missing file is not an error.
func loadConfig() (Config, error) {
	path := configPath()
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyCommonConfig fills flag-backed globals the user did not set on
// the command line.
func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.KernelPath != "" && !c.IsSet("kernel-path") {
		kernelPath = cfg.KernelPath
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
