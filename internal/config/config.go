package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/pathgen/internal/logging"
)

// EnvPath overrides the config file path.
const EnvPath = "PATHGEN_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath is set.
const DefaultPath = "config/pathserver.yaml"

// Data source kinds.
const (
	SourceYAML     = "yaml"
	SourceDatabase = "database"
)

// Server holds all configuration for the path server.
type Server struct {
	LogLevel string             `yaml:"log_level"`
	Log      logging.FileConfig `yaml:"log"`

	Database DatabaseConfig `yaml:"database"`
	Data     DataConfig     `yaml:"data"`
	World    WorldConfig    `yaml:"world"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DataConfig selects where paths, taxi tables and spawns come from.
type DataConfig struct {
	Source      string `yaml:"source"` // yaml | database
	WaypointDir string `yaml:"waypoint_dir"`
	TaxiFile    string `yaml:"taxi_file"`
	SpawnFile   string `yaml:"spawn_file"`
	ScriptDir   string `yaml:"script_dir"`
	Watch       bool   `yaml:"watch"` // hot reload of yaml data and scripts
}

// WorldConfig configures the map update loop.
type WorldConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Maps         []uint32      `yaml:"maps"`
	DebugMotion  bool          `yaml:"debug_motion"`
}

// MonitorConfig configures the websocket motion stream.
type MonitorConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	PlayerGUID  uint64 `yaml:"player_guid"` // player driven by chat commands from the monitor
	Locale      string `yaml:"locale"`
}

// Addr returns host:port of the monitor listener.
func (m MonitorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.BindAddress, m.Port)
}

// Default returns Server config with sensible defaults.
func Default() Server {
	return Server{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "pathgen",
			Password: "pathgen",
			DBName:   "pathgen",
			SSLMode:  "disable",
		},
		Data: DataConfig{
			Source:      SourceYAML,
			WaypointDir: "data/waypoints",
			TaxiFile:    "data/taxi.yaml",
			SpawnFile:   "data/spawns.yaml",
			ScriptDir:   "data/scripts",
			Watch:       true,
		},
		World: WorldConfig{
			TickInterval: 100 * time.Millisecond,
			Maps:         []uint32{0, 1, 530, 559},
		},
		Monitor: MonitorConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1",
			Port:        8085,
			Locale:      "enUS",
		},
	}
}

// Validate checks values that have no safe fallback.
func (s Server) Validate() error {
	switch s.Data.Source {
	case SourceYAML, SourceDatabase:
	default:
		return fmt.Errorf("data.source %q: want %q or %q", s.Data.Source, SourceYAML, SourceDatabase)
	}
	if s.World.TickInterval <= 0 {
		return fmt.Errorf("world.tick_interval must be positive, got %s", s.World.TickInterval)
	}
	if len(s.World.Maps) == 0 {
		return fmt.Errorf("world.maps is empty")
	}
	if s.Monitor.Enabled && (s.Monitor.Port <= 0 || s.Monitor.Port > 65535) {
		return fmt.Errorf("monitor.port %d out of range", s.Monitor.Port)
	}
	return nil
}

// Path resolves the config path: explicit flag, then EnvPath, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return DefaultPath
}

// Load loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Server, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
