package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moyoez/upload-widget-go/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

const (
	DefaultMaxFileSize = "100MB"
	DefaultSessionTTL  = "60m"
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Port:             8080,
		Endpoint:         "http://localhost:5000/",
		AllowedOrigins:   []string{"*"}, // same as postMessage(..., '*'), narrow it in production
		MaxFileSize:      DefaultMaxFileSize,
		SpoolDir:         filepath.Join(os.TempDir(), "upload-widget"),
		SessionTTL:       DefaultSessionTTL,
		UploadRatePerMin: 30,
	}
}

// LoadConfig reads the YAML config, writing defaults when the file does not exist.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	CurrentConfig = cfg
	return cfg, nil
}

// ValidateConfig fills empty fields with defaults and rejects unusable values.
func ValidateConfig(cfg *types.AppConfig) error {
	def := defaultConfig()
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.MaxFileSize == "" {
		cfg.MaxFileSize = def.MaxFileSize
	}
	if _, err := ParseMaxFileSize(cfg.MaxFileSize); err != nil {
		return err
	}
	if cfg.SessionTTL == "" {
		cfg.SessionTTL = def.SessionTTL
	}
	if _, err := ParseSessionTTL(cfg.SessionTTL); err != nil {
		return err
	}
	if cfg.SpoolDir == "" {
		cfg.SpoolDir = def.SpoolDir
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = def.AllowedOrigins
	}
	if cfg.UploadRatePerMin < 0 {
		return fmt.Errorf("uploadRatePerMinute must not be negative")
	}
	return nil
}

// ParseSessionTTL parses the session TTL, e.g. "60m".
func ParseSessionTTL(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sessionTTL must be positive")
	}
	return d, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveConfig persists cfg to the loaded config path, used after a certificate is generated.
func SaveConfig(cfg types.AppConfig) error {
	if err := writeDefaultConfig(ConfigPath, cfg); err != nil {
		return fmt.Errorf("failed to save config file: %v", err)
	}
	CurrentConfig = cfg
	return nil
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}
