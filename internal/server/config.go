package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tablestakes/holdem/internal/game"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Rooms  []RoomConfig   `hcl:"room,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Addr     string `hcl:"addr,optional"`
	LogLevel string `hcl:"log_level,optional"`
	NATSURL  string `hcl:"nats_url,optional"`
}

// RoomConfig defines one room's table parameters. The room named "default"
// (or the first block) applies to rooms created on the fly.
type RoomConfig struct {
	Name               string `hcl:"name,label"`
	SmallBlind         int    `hcl:"small_blind,optional"`
	BigBlind           int    `hcl:"big_blind,optional"`
	MinPlayers         int    `hcl:"min_players,optional"`
	MaxPlayers         int    `hcl:"max_players,optional"`
	StartingStake      int    `hcl:"starting_stake,optional"`
	TurnTimeoutSeconds int    `hcl:"turn_timeout_seconds,optional"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Addr:     "localhost:8080",
			LogLevel: "info",
		},
		Rooms: []RoomConfig{{
			Name:               "default",
			SmallBlind:         5,
			BigBlind:           10,
			MinPlayers:         2,
			MaxPlayers:         8,
			StartingStake:      1000,
			TurnTimeoutSeconds: 120,
		}},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to defaults
// when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "localhost:8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if len(cfg.Rooms) == 0 {
		cfg.Rooms = DefaultConfig().Rooms
	}
	for i := range cfg.Rooms {
		applyRoomDefaults(&cfg.Rooms[i])
	}

	return &cfg, nil
}

func applyRoomDefaults(rc *RoomConfig) {
	if rc.SmallBlind == 0 {
		rc.SmallBlind = 5
	}
	if rc.BigBlind == 0 {
		rc.BigBlind = rc.SmallBlind * 2
	}
	if rc.MinPlayers == 0 {
		rc.MinPlayers = 2
	}
	if rc.MaxPlayers == 0 {
		rc.MaxPlayers = 8
	}
	if rc.StartingStake == 0 {
		rc.StartingStake = 1000
	}
	if rc.TurnTimeoutSeconds == 0 {
		rc.TurnTimeoutSeconds = 120
	}
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	for _, rc := range c.Rooms {
		if rc.SmallBlind <= 0 {
			return fmt.Errorf("room %s: small blind must be positive", rc.Name)
		}
		if rc.BigBlind <= rc.SmallBlind {
			return fmt.Errorf("room %s: big blind must exceed small blind", rc.Name)
		}
		if rc.MinPlayers < 2 {
			return fmt.Errorf("room %s: at least two players are required", rc.Name)
		}
		if rc.MaxPlayers < rc.MinPlayers || rc.MaxPlayers > 10 {
			return fmt.Errorf("room %s: max players must be between min players and 10", rc.Name)
		}
		if rc.StartingStake < 2*rc.SmallBlind {
			return fmt.Errorf("room %s: starting stake cannot cover the blinds", rc.Name)
		}
	}
	return nil
}

// GameConfig maps a room block to engine configuration, using the "default"
// block (or the first) for unknown room ids.
func (c *Config) GameConfig(roomID string) game.Config {
	rc := c.roomConfig(roomID)
	return game.Config{
		SmallBlind: rc.SmallBlind,
		BigBlind:   rc.BigBlind,
		MinPlayers: rc.MinPlayers,
		MaxPlayers: rc.MaxPlayers,
	}
}

// StartingStake returns the stake granted to players on first sight. Wallets
// are shared across rooms, so the "default" room block is authoritative.
func (c *Config) StartingStake() int {
	return c.roomConfig("default").StartingStake
}

// TurnTimeout returns the configured turn timeout for a room.
func (c *Config) TurnTimeout(roomID string) time.Duration {
	return time.Duration(c.roomConfig(roomID).TurnTimeoutSeconds) * time.Second
}

func (c *Config) roomConfig(roomID string) RoomConfig {
	var fallback *RoomConfig
	for i := range c.Rooms {
		if c.Rooms[i].Name == roomID {
			return c.Rooms[i]
		}
		if c.Rooms[i].Name == "default" && fallback == nil {
			fallback = &c.Rooms[i]
		}
	}
	if fallback != nil {
		return *fallback
	}
	return c.Rooms[0]
}
