package simulation

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Parameter types understood by the prompts and the environment overrides
const (
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeDuration = "duration"
)

// SimulationConfig represents the configuration structure for a simulation
// loaded from simulation.yaml
type SimulationConfig struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Version     string      `yaml:"version"`
	Category    string      `yaml:"category"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter defines a configurable parameter for a simulation
type Parameter struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"` // integer, float, string, duration, boolean
	Description string      `yaml:"description"`
	Default     interface{} `yaml:"default"`
	Required    bool        `yaml:"required"`
	Min         interface{} `yaml:"min,omitempty"`
	Max         interface{} `yaml:"max,omitempty"`
	Options     []string    `yaml:"options,omitempty"` // For string enums
}

// LoadConfig reads and validates a simulation.yaml file
func LoadConfig(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the simulation metadata and every parameter declaration
func (c *SimulationConfig) Validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	seen := make(map[string]bool)
	for _, p := range c.Parameters {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("parameter %s declared twice", p.Name))
		}
		seen[p.Name] = true
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Defaults returns the default value of every parameter that has one
func (c *SimulationConfig) Defaults() map[string]interface{} {
	defaults := make(map[string]interface{})
	for _, p := range c.Parameters {
		if p.Default != nil {
			defaults[p.Name] = p.Default
		}
	}
	return defaults
}

// Validate checks the parameter type and that its default is in range
func (p Parameter) Validate() error {
	if p.Name == "" {
		return errors.New("parameter name is required")
	}
	switch p.Type {
	case TypeInteger, TypeFloat, TypeString, TypeBoolean, TypeDuration:
	default:
		return fmt.Errorf("parameter %s: unsupported type %q", p.Name, p.Type)
	}
	if p.Default == nil {
		return nil
	}
	if err := p.CheckRange(p.Default); err != nil {
		return fmt.Errorf("parameter %s default: %w", p.Name, err)
	}
	return nil
}

// Parse converts a raw string, as typed at a prompt or set in the
// environment, to the parameter's type
func (p Parameter) Parse(value string) (interface{}, error) {
	var (
		parsed interface{}
		err    error
	)
	switch p.Type {
	case TypeInteger:
		parsed, err = strconv.Atoi(value)
	case TypeFloat:
		parsed, err = strconv.ParseFloat(value, 64)
	case TypeString:
		parsed = value
	case TypeBoolean:
		parsed, err = strconv.ParseBool(value)
	case TypeDuration:
		parsed, err = time.ParseDuration(value)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", p.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", p.Type, value, err)
	}
	if err := p.CheckRange(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// CheckRange enforces Min, Max and Options on a typed value
func (p Parameter) CheckRange(value interface{}) error {
	switch p.Type {
	case TypeInteger:
		v := ToInt(value)
		if p.Min != nil && v < ToInt(p.Min) {
			return fmt.Errorf("value must be at least %d", ToInt(p.Min))
		}
		if p.Max != nil && v > ToInt(p.Max) {
			return fmt.Errorf("value must be at most %d", ToInt(p.Max))
		}
	case TypeFloat:
		v := ToFloat64(value)
		if p.Min != nil && v < ToFloat64(p.Min) {
			return fmt.Errorf("value must be at least %g", ToFloat64(p.Min))
		}
		if p.Max != nil && v > ToFloat64(p.Max) {
			return fmt.Errorf("value must be at most %g", ToFloat64(p.Max))
		}
	case TypeString:
		if len(p.Options) == 0 {
			return nil
		}
		s := fmt.Sprintf("%v", value)
		for _, o := range p.Options {
			if o == s {
				return nil
			}
		}
		return fmt.Errorf("value must be one of %v", p.Options)
	}
	return nil
}

// ToInt converts a yaml or prompt value to an int
func ToInt(v interface{}) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case string:
		i, _ := strconv.Atoi(val)
		return i
	default:
		return 0
	}
}

// ToFloat64 converts a yaml or prompt value to a float64
func ToFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}

// ToDuration converts a yaml or prompt value to a time.Duration
func ToDuration(v interface{}) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		return time.ParseDuration(val)
	case int:
		return time.Duration(val) * time.Second, nil
	default:
		return 0, fmt.Errorf("invalid duration %v", v)
	}
}
