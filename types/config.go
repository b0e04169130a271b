package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Port               int      `yaml:"port"`
	Endpoint           string   `yaml:"endpoint"` // upload backend base, "api/uploads" is appended
	AllowedOrigins     []string `yaml:"allowedOrigins"`
	MaxFileSize        string   `yaml:"maxFileSize"` // human size, e.g. "100MB"
	SpoolDir           string   `yaml:"spoolDir"`
	SessionTTL         string   `yaml:"sessionTTL"`
	UploadRatePerMin   int      `yaml:"uploadRatePerMinute"`
	ProbeBackend       bool     `yaml:"probeBackend"`
	InsecureSkipVerify bool     `yaml:"insecureSkipVerify"`
	WebOutPath         string   `yaml:"webOutPath,omitempty"`
	Https              bool     `yaml:"https"`
	CertPEM            string   `yaml:"certPEM,omitempty"`
	KeyPEM             string   `yaml:"keyPEM,omitempty"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log               string
	UseConfigPath     string
	UsePort           int
	UseEndpoint       string
	UseAllowedOrigins string // comma separated
	UseSpoolDir       string
	UseWebOutPath     string
	UseProbeBackend   bool
	UseHttps          bool
}
