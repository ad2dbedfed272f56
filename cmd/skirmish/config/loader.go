package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/legion-battalions/pkg/logger"
	"github.com/picogrid/legion-battalions/pkg/simulation"
)

// EnvPrefix prefixes every scenario environment override
const EnvPrefix = "BATTALION_"

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*SimulationConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unset fields keep their defaults
	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads config from file or returns default, with environment overrides
func LoadConfigOrDefault(path string) (*SimulationConfig, error) {
	var config *SimulationConfig
	var err error

	if path != "" {
		config, err = LoadConfig(path)
		if err != nil {
			logger.Warnf("Could not load config from %s: %v", path, err)
			config = nil
		}
	}

	if config == nil {
		defaultPaths := []string{
			"skirmish.yaml",
			filepath.Join("cmd", "skirmish", "config.yaml"),
		}

		for _, p := range defaultPaths {
			if _, statErr := os.Stat(p); statErr != nil {
				continue
			}
			config, err = LoadConfig(p)
			if err == nil {
				logger.Infof("Loaded config from: %s", p)
				break
			}
			logger.Warnf("Could not load config from %s: %v", p, err)
		}
	}

	if config == nil {
		logger.Info("Using default configuration")
		config = GetDefaultConfig()
	}

	// Always apply environment variable overrides
	MergeWithEnvironment(config)

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *SimulationConfig, path string) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// MergeWithCLIOverrides applies simulation parameters to the configuration.
// Values of the wrong type or out of range are ignored.
func MergeWithCLIOverrides(config *SimulationConfig, overrides map[string]interface{}) {
	for key, value := range overrides {
		switch key {
		case "num_battalions":
			if count, ok := asInt(value); ok && count > 0 {
				config.Defaults.NumBattalions = count
			}
		case "ticks":
			if count, ok := asInt(value); ok && count > 0 {
				config.Simulation.Ticks = count
			}
		case "tick_interval":
			if interval, err := simulation.ToDuration(value); err == nil && interval > 0 {
				config.Simulation.TickInterval = interval
			}
		case "capture_chance":
			if chance, ok := asFloat(value); ok && chance >= 0 && chance <= 1 {
				config.Defaults.CaptureChance = chance
			}
		case "casualty_chance":
			if chance, ok := asFloat(value); ok && chance >= 0 && chance <= 1 {
				config.Defaults.CasualtyChance = chance
			}
		case "seed":
			if seed, ok := asInt(value); ok {
				config.Defaults.Seed = int64(seed)
			}
		case "battalion_template":
			if name, ok := value.(string); ok && name != "" {
				config.Defaults.BattalionTemplate = name
			}
		case "templates":
			if path, ok := value.(string); ok {
				config.Templates.Path = path
			}
		case "pre_placed":
			// applies to the first player, the defender of the default scenario
			if pre, ok := value.(bool); ok && len(config.Players) > 0 {
				config.Players[0].PrePlaced = pre
			}
		case "log_level":
			if level, ok := value.(string); ok && isValidLevel(level) {
				config.Logging.ConsoleLevel = strings.ToLower(level)
			}
		case "quiet":
			if quiet, ok := value.(bool); ok {
				config.Logging.Quiet = quiet
			}
		}
	}
}

func asInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	}
	return 0, false
}

// LoadConfigWithOverrides loads config and applies both environment and CLI overrides
func LoadConfigWithOverrides(path string, cliOverrides map[string]interface{}) (*SimulationConfig, error) {
	config, err := LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}

	// CLI overrides win over environment variables
	if cliOverrides != nil {
		MergeWithCLIOverrides(config, cliOverrides)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed after overrides: %w", err)
	}

	return config, nil
}

// MergeWithEnvironment merges config with BATTALION_ environment variables
func MergeWithEnvironment(config *SimulationConfig) {
	if path := os.Getenv(EnvPrefix + "TEMPLATES"); path != "" {
		config.Templates.Path = path
	}

	if interval := os.Getenv(EnvPrefix + "TICK_INTERVAL"); interval != "" {
		if duration, err := time.ParseDuration(interval); err == nil && duration > 0 {
			config.Simulation.TickInterval = duration
		}
	}

	if ticks := os.Getenv(EnvPrefix + "TICKS"); ticks != "" {
		if count, err := strconv.Atoi(ticks); err == nil && count > 0 {
			config.Simulation.Ticks = count
		}
	}

	if num := os.Getenv(EnvPrefix + "NUM_BATTALIONS"); num != "" {
		if count, err := strconv.Atoi(num); err == nil && count > 0 {
			config.Defaults.NumBattalions = count
		}
	}

	if chance := os.Getenv(EnvPrefix + "CAPTURE_CHANCE"); chance != "" {
		if p, err := strconv.ParseFloat(chance, 64); err == nil && p >= 0 && p <= 1 {
			config.Defaults.CaptureChance = p
		}
	}

	if chance := os.Getenv(EnvPrefix + "CASUALTY_CHANCE"); chance != "" {
		if p, err := strconv.ParseFloat(chance, 64); err == nil && p >= 0 && p <= 1 {
			config.Defaults.CasualtyChance = p
		}
	}

	if seed := os.Getenv(EnvPrefix + "SEED"); seed != "" {
		if s, err := strconv.ParseInt(seed, 10, 64); err == nil {
			config.Defaults.Seed = s
		}
	}

	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" && isValidLevel(logLevel) {
		config.Logging.ConsoleLevel = strings.ToLower(logLevel)
	}

	if quiet := os.Getenv(EnvPrefix + "QUIET"); quiet != "" {
		if q, err := strconv.ParseBool(quiet); err == nil {
			config.Logging.Quiet = q
		}
	}
}
