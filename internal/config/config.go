package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable overriding the config path.
const EnvPath = "EDICTBRIDGE_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/server.toml"

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Session   SessionConfig   `toml:"session"`
	Scripting ScriptingConfig `toml:"scripting"`
	Console   ConsoleConfig   `toml:"console"`
	Host      HostConfig      `toml:"host"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	Level     string `toml:"level"`      // level spawned at boot
	LevelsDir string `toml:"levels_dir"` // where "map <name>" looks for <name>.yaml
	StartTime int64  // set at boot, not from config
}

type SessionConfig struct {
	MaxEdicts      int           `toml:"max_edicts"`
	MaxClients     int           `toml:"max_clients"`
	TickRate       time.Duration `toml:"tick_rate"`
	Strict         bool          `toml:"strict"`          // hook failures restart the session
	OverrideNative bool          `toml:"override_native"` // hooks replace native spawn/touch/think
}

type ScriptingConfig struct {
	Dir     string `toml:"dir"`
	Sandbox bool   `toml:"sandbox"`
}

type ConsoleConfig struct {
	BindAddress      string `toml:"bind_address"` // "" disables rcon
	RconPasswordHash string `toml:"rcon_password_hash"`
	QueueSize        int    `toml:"queue_size"`
	MaxPerTick       int    `toml:"max_per_tick"`
	Stdin            bool   `toml:"stdin"`
}

type HostConfig struct {
	Charset string `toml:"charset"` // WHATWG name of the host string encoding
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // "" disables the session journal
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   time.Duration `toml:"flush_interval"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config path from the environment or the default.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	s := c.Session
	if s.MaxClients < 1 {
		return fmt.Errorf("session.max_clients must be at least 1")
	}
	if s.MaxEdicts < s.MaxClients+2 {
		return fmt.Errorf("session.max_edicts (%d) must exceed max_clients+1", s.MaxEdicts)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("session.tick_rate must be positive")
	}
	if c.Console.BindAddress != "" && c.Console.RconPasswordHash == "" {
		return fmt.Errorf("console.bind_address set without console.rcon_password_hash")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "edictbridge",
			Level:     "start",
			LevelsDir: "levels",
		},
		Session: SessionConfig{
			MaxEdicts:  600,
			MaxClients: 8,
			TickRate:   100 * time.Millisecond,
		},
		Scripting: ScriptingConfig{
			Dir:     "scripts",
			Sandbox: true,
		},
		Console: ConsoleConfig{
			QueueSize:  32,
			MaxPerTick: 8,
		},
		Host: HostConfig{
			Charset: "windows-1252",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
