/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ssargent/tfrecord/pkg/checksum"
)

// EnvPrefix prefixes environment overrides, e.g. TFRECORD_READER_CHECKSUM
const EnvPrefix = "TFRECORD_"

// Config represents the tfrecord tool configuration
type Config struct {
	Reader  Reader  `yaml:"reader"`
	Index   Index   `yaml:"index"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

// Reader contains record reader settings
type Reader struct {
	ValidateIntegrity bool   `yaml:"validate_integrity"`
	Checksum          string `yaml:"checksum"`
	BufferSize        int    `yaml:"buffer_size"`
	MaxRecordSize     uint64 `yaml:"max_record_size"`
}

// Index contains offset index settings
type Index struct {
	Dir       string `yaml:"dir"`
	BatchSize int    `yaml:"batch_size"`
}

// Server contains HTTP service settings
type Server struct {
	Port   int    `yaml:"port"`
	Bind   string `yaml:"bind"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Reader: Reader{
			ValidateIntegrity: false,
			Checksum:          checksum.Default.Name(),
			BufferSize:        64 * 1024,
		},
		Index: Index{
			Dir:       "./index",
			BatchSize: 4096,
		},
		Server: Server{
			Port: 8080,
			Bind: "127.0.0.1",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig layers the file at configPath (if not empty) and TFRECORD_*
// environment variables over the defaults.
func LoadConfig(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}

		// Validate path to prevent directory traversal
		if !filepath.IsAbs(configPath) {
			absPath, err := filepath.Abs(configPath)
			if err != nil {
				return nil, fmt.Errorf("invalid config path: %w", err)
			}
			configPath = absPath
		}

		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	config := DefaultConfig()
	if err := k.UnmarshalWithConf("", config, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// envKey maps TFRECORD_READER_VALIDATE_INTEGRITY to reader.validate_integrity.
// Only the first underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if _, err := checksum.Lookup(c.Reader.Checksum); err != nil {
		return fmt.Errorf("invalid reader.checksum: %w", err)
	}
	if c.Reader.BufferSize < -1 {
		return fmt.Errorf("invalid reader.buffer_size: %d", c.Reader.BufferSize)
	}
	if c.Index.BatchSize < 0 {
		return fmt.Errorf("invalid index.batch_size: %d", c.Index.BatchSize)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if hclog.LevelFromString(c.Logging.Level) == hclog.NoLevel {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yamlv3.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with secure permissions (0600), the file may hold the API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig writes a default configuration with a generated API key
func BootstrapConfig(configPath string, indexDir string) (*Config, error) {
	config := DefaultConfig()
	if indexDir != "" {
		config.Index.Dir = indexDir
	}

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Server.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./tfrecord.yaml"
	}

	// For Linux/macOS, use ~/.config/tfrecord/config.yaml
	configDir := filepath.Join(homeDir, ".config", "tfrecord")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
