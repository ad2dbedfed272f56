package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SimulationConfig holds the complete skirmish scenario
type SimulationConfig struct {
	// Basic simulation settings
	Simulation SimulationSettings `yaml:"simulation"`

	// Entity template source
	Templates TemplatesConfig `yaml:"templates"`

	// Entity runtime tuning
	World WorldConfig `yaml:"world"`

	// Participants, at least two
	Players []PlayerConfig `yaml:"players"`

	// Default parameters
	Defaults DefaultsConfig `yaml:"defaults"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`
}

// SimulationSettings holds basic simulation settings
type SimulationSettings struct {
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Ticks        int           `yaml:"ticks"`
}

// TemplatesConfig points at a templates file. An empty path uses the built-in set.
type TemplatesConfig struct {
	Path string `yaml:"path,omitempty"`
}

// WorldConfig tunes spawn point picking
type WorldConfig struct {
	MaxSpawnRings       int     `yaml:"max_spawn_rings"`
	DefaultSpawnSpacing float64 `yaml:"default_spawn_spacing"`
}

// Origin is where a player's battalions are placed
type Origin struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

// PlayerConfig describes one participant
type PlayerConfig struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Civ    string `yaml:"civ"`
	Origin Origin `yaml:"origin"`
	// PrePlaced battalions get a hand-placed roster instead of spawning on ownership
	PrePlaced bool `yaml:"pre_placed,omitempty"`
	// BattalionTemplate overrides Defaults.BattalionTemplate for this player
	BattalionTemplate string `yaml:"battalion_template,omitempty"`
}

// DefaultsConfig defines default simulation parameters
type DefaultsConfig struct {
	NumBattalions     int     `yaml:"num_battalions"`
	BattalionTemplate string  `yaml:"battalion_template"` // {civ} resolves to the player's civ
	BattalionSpacing  float64 `yaml:"battalion_spacing"`
	CaptureChance     float64 `yaml:"capture_chance"`  // 0.0 to 1.0 per battalion and tick
	CasualtyChance    float64 `yaml:"casualty_chance"` // 0.0 to 1.0 per battalion and tick
	Seed              int64   `yaml:"seed"`            // 0 seeds from the clock
}

// LoggingConfig defines logging and reporting settings
type LoggingConfig struct {
	ConsoleLevel string `yaml:"console_level"` // "debug", "info", "warn", "error"
	Quiet        bool   `yaml:"quiet"`
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks if the configuration is valid
func (c *SimulationConfig) Validate() error {
	var errs []error

	if c.Simulation.Name == "" {
		errs = append(errs, errors.New("simulation name is required"))
	}
	if c.Simulation.TickInterval <= 0 {
		errs = append(errs, errors.New("tick interval must be positive"))
	}
	if c.Simulation.Ticks <= 0 {
		errs = append(errs, errors.New("number of ticks must be positive"))
	}

	if len(c.Players) < 2 {
		errs = append(errs, errors.New("at least two players are required"))
	}
	ids := make(map[int]bool)
	for _, p := range c.Players {
		if p.ID <= 0 {
			errs = append(errs, fmt.Errorf("player %q: id must be positive, 0 is reserved for gaia", p.Name))
		}
		if ids[p.ID] {
			errs = append(errs, fmt.Errorf("player id %d used twice", p.ID))
		}
		ids[p.ID] = true
		if p.Civ == "" {
			errs = append(errs, fmt.Errorf("player %q: civ is required", p.Name))
		}
	}

	if c.Defaults.NumBattalions <= 0 {
		errs = append(errs, errors.New("number of battalions must be positive"))
	}
	if c.Defaults.BattalionTemplate == "" {
		errs = append(errs, errors.New("battalion template is required"))
	}
	if c.Defaults.CaptureChance < 0 || c.Defaults.CaptureChance > 1 {
		errs = append(errs, errors.New("capture chance must be between 0.0 and 1.0"))
	}
	if c.Defaults.CasualtyChance < 0 || c.Defaults.CasualtyChance > 1 {
		errs = append(errs, errors.New("casualty chance must be between 0.0 and 1.0"))
	}
	if c.Defaults.CaptureChance+c.Defaults.CasualtyChance > 1 {
		errs = append(errs, errors.New("capture and casualty chances must not sum above 1.0"))
	}

	if c.Logging.ConsoleLevel != "" && !isValidLevel(c.Logging.ConsoleLevel) {
		errs = append(errs, fmt.Errorf("unknown console level %q", c.Logging.ConsoleLevel))
	}

	return errors.Join(errs...)
}

func isValidLevel(level string) bool {
	for _, valid := range validLevels {
		if strings.ToLower(level) == valid {
			return true
		}
	}
	return false
}

// BattalionTemplateFor returns the unresolved battalion template of a player
func (c *SimulationConfig) BattalionTemplateFor(p PlayerConfig) string {
	if p.BattalionTemplate != "" {
		return p.BattalionTemplate
	}
	return c.Defaults.BattalionTemplate
}

// String returns a human-readable representation of the configuration
func (c *SimulationConfig) String() string {
	var players strings.Builder
	for _, p := range c.Players {
		fmt.Fprintf(&players, "\n  %d %s (%s) at %.0f,%.0f", p.ID, p.Name, p.Civ, p.Origin.X, p.Origin.Z)
		if p.PrePlaced {
			players.WriteString(" pre-placed")
		}
	}

	templatesPath := c.Templates.Path
	if templatesPath == "" {
		templatesPath = "built-in"
	}

	return fmt.Sprintf(`Simulation Configuration:
  Name: %s
  Description: %s
  Tick Interval: %v
  Ticks: %d
  Templates: %s

Players:%s

Battalions:
  Per Player: %d
  Template: %s
  Spacing: %.1f
  Capture Chance: %.2f
  Casualty Chance: %.2f
  Seed: %d

Logging:
  Console Level: %s
  Quiet: %t`,
		c.Simulation.Name,
		c.Simulation.Description,
		c.Simulation.TickInterval,
		c.Simulation.Ticks,
		templatesPath,
		players.String(),
		c.Defaults.NumBattalions,
		c.Defaults.BattalionTemplate,
		c.Defaults.BattalionSpacing,
		c.Defaults.CaptureChance,
		c.Defaults.CasualtyChance,
		c.Defaults.Seed,
		c.Logging.ConsoleLevel,
		c.Logging.Quiet,
	)
}

// GetDefaultConfig returns the two player skirmish
func GetDefaultConfig() *SimulationConfig {
	return &SimulationConfig{
		Simulation: SimulationSettings{
			Name:         "battalion-skirmish",
			Description:  "Two armies of battalions trading casualties and captures",
			TickInterval: 500 * time.Millisecond,
			Ticks:        20,
		},

		World: WorldConfig{
			MaxSpawnRings:       4,
			DefaultSpawnSpacing: 2,
		},

		Players: []PlayerConfig{
			{ID: 1, Name: "Athens", Civ: "athen", Origin: Origin{X: 0, Z: 0}},
			{ID: 2, Name: "Sparta", Civ: "spart", Origin: Origin{X: 0, Z: 80}},
		},

		Defaults: DefaultsConfig{
			NumBattalions:     2,
			BattalionTemplate: "units/{civ}_battalion_spearmen",
			BattalionSpacing:  25,
			CaptureChance:     0.1,
			CasualtyChance:    0.3,
		},

		Logging: LoggingConfig{
			ConsoleLevel: "info",
		},
	}
}
