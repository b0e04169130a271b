package tool

import (
	"flag"

	"github.com/moyoez/upload-widget-go/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override listen port")
	flag.StringVar(&cfg.UseEndpoint, "useEndpoint", "", "override upload backend base URL (api/uploads is appended)")
	flag.StringVar(&cfg.UseAllowedOrigins, "useAllowedOrigins", "", "comma separated origins allowed to embed the widget, '*' for any")
	flag.StringVar(&cfg.UseSpoolDir, "useSpoolDir", "", "override directory holding selected files")
	flag.StringVar(&cfg.UseWebOutPath, "useWebOutPath", "", "path to the widget front-end build (index.html)")
	flag.BoolVar(&cfg.UseProbeBackend, "useProbeBackend", false, "ping the upload backend host on /status")
	flag.BoolVar(&cfg.UseHttps, "useHttps", false, "serve over https with a self-signed certificate kept in config")
	flag.Parse()
	return cfg
}

// ApplyFlagOverrides merges non-zero flag values into the loaded config.
func ApplyFlagOverrides(appCfg *types.AppConfig, flags types.Config) {
	if flags.UsePort > 0 {
		appCfg.Port = flags.UsePort
	}
	if flags.UseEndpoint != "" {
		appCfg.Endpoint = flags.UseEndpoint
	}
	if flags.UseAllowedOrigins != "" {
		appCfg.AllowedOrigins = SplitOrigins(flags.UseAllowedOrigins)
	}
	if flags.UseSpoolDir != "" {
		appCfg.SpoolDir = flags.UseSpoolDir
	}
	if flags.UseWebOutPath != "" {
		appCfg.WebOutPath = flags.UseWebOutPath
	}
	if flags.UseProbeBackend {
		appCfg.ProbeBackend = true
	}
	if flags.UseHttps {
		appCfg.Https = true
	}
}
