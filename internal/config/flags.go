package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagResolution = flag.Int("resolution", 0, "Height field resolution (cells per side)")
	flagRecord     = flag.String("record", "", "Directory for the interaction journal")
	flagRefine     = flag.String("refine", "", "Refinement mode: terrace or passthrough")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagResolution > 0 {
		cfg.Terrain.Resolution = *flagResolution
	}
	if *flagRecord != "" {
		cfg.Record.Dir = *flagRecord
	}
	if *flagRefine != "" {
		cfg.Refine.Mode = *flagRefine
	}
}
