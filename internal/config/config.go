// Package config loads the daemon's YAML configuration file and applies
// command-line flag overrides on top of it, the same two-layer shape
// the broader control-software corpus uses for its daemons: sane
// defaults in a struct literal, a config file for persistent overrides,
// flags for one-off overrides at invocation time.
package config

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds the daemon's settings: the bus socket path, the pid file,
// the tick period, the rudder gains and deflection limit, the sail-angle
// measurement delay, a plan name, the listener addresses and logging.
// Wind-strength thresholds and sail limits are not part of it.
type Config struct {
	BusSocketPath string `yaml:"bus_socket_path"`
	PIDFile       string `yaml:"pid_file"`

	TickPeriodMS int `yaml:"tick_period_ms"`

	RudderKp         float64 `yaml:"rudder_kp"`
	RudderKi         float64 `yaml:"rudder_ki"`
	RudderKd         float64 `yaml:"rudder_kd"`
	MaxRudderDeg     float64 `yaml:"max_rudder_deg"`

	GammaSailDelayTicks int `yaml:"gamma_sail_delay_ticks"`

	PlanName string `yaml:"plan_name"`

	MetricsAddr   string `yaml:"metrics_addr"`
	TelemetryAddr string `yaml:"telemetry_addr"`

	LogLevel      string `yaml:"log_level"`
	LogRotateFile string `yaml:"log_rotate_file"`
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		BusSocketPath:       "/var/run/avalon/bus.sock",
		PIDFile:             "/var/run/avalon/helmsmand.pid",
		TickPeriodMS:        100,
		RudderKp:            2.0,
		RudderKi:            0.05,
		RudderKd:            0.5,
		MaxRudderDeg:        34.0,
		GammaSailDelayTicks: 5,
		PlanName:            "toulon",
		MetricsAddr:         ":9101",
		TelemetryAddr:       ":9102",
		LogLevel:            "info",
	}
}

// Load reads a YAML config file on top of Default(); a missing file is
// not an error, it just leaves the defaults in place (a fresh install
// has no config file yet).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds the CLI surface flags shared by every daemon binary.
type Flags struct {
	Debug      bool
	Verbose    bool
	ConfigFile string
	SocketPath string
}

// RegisterFlags wires Flags into the given FlagSet (normally flag.CommandLine).
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.BoolVar(&f.Debug, "d", false, "debug: run in foreground, log to stderr")
	fs.BoolVar(&f.Verbose, "v", false, "verbose logging")
	fs.StringVar(&f.ConfigFile, "config", "", "path to YAML config file")
	fs.StringVar(&f.SocketPath, "socket", "", "path to the bus Unix socket (overrides config)")
	return f
}

// Apply overlays the parsed CLI flags onto a loaded Config.
func (f *Flags) Apply(cfg Config) Config {
	if f.SocketPath != "" {
		cfg.BusSocketPath = f.SocketPath
	}
	if f.Debug {
		cfg.LogLevel = "debug"
		cfg.LogRotateFile = ""
	} else if f.Verbose && cfg.LogLevel != "debug" {
		cfg.LogLevel = "info"
	}
	return cfg
}
