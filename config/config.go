// Package config loads engine configuration from YAML with environment
// variable overrides.
//
// Precedence, lowest to highest: built-in defaults, YAML file, environment
// variables prefixed with TASKFORCE_.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of all environment overrides.
const EnvPrefix = "TASKFORCE_"

// Config is the root engine configuration.
type Config struct {
	Fitness       FitnessConfig       `yaml:"fitness"`
	Delegation    DelegationConfig    `yaml:"delegation"`
	Collaboration CollaborationConfig `yaml:"collaboration"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// FitnessConfig holds the fitness blend weights. They must sum to 1.
type FitnessConfig struct {
	SpecializationWeight float64 `yaml:"specialization_weight"`
	SkillWeight          float64 `yaml:"skill_weight"`
	AvailabilityWeight   float64 `yaml:"availability_weight"`
}

// DelegationConfig tunes team construction.
type DelegationConfig struct {
	MaxParticipants int `yaml:"max_participants"`
}

// CollaborationConfig tunes protocol execution.
type CollaborationConfig struct {
	ConsensusMaxRounds int     `yaml:"consensus_max_rounds"`
	ConsensusThreshold float64 `yaml:"consensus_threshold"`
	ProgressIncrement  float64 `yaml:"progress_increment"`
}

// MetricsConfig controls the prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Fitness: FitnessConfig{
			SpecializationWeight: 0.4,
			SkillWeight:          0.4,
			AvailabilityWeight:   0.2,
		},
		Delegation: DelegationConfig{
			MaxParticipants: 5,
		},
		Collaboration: CollaborationConfig{
			ConsensusMaxRounds: 5,
			ConsensusThreshold: 0.8,
			ProgressIncrement:  0.25,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "taskforce",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides, then validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides individual fields from TASKFORCE_* variables.
func (c *Config) applyEnv() {
	envFloat("FITNESS_SPECIALIZATION_WEIGHT", &c.Fitness.SpecializationWeight)
	envFloat("FITNESS_SKILL_WEIGHT", &c.Fitness.SkillWeight)
	envFloat("FITNESS_AVAILABILITY_WEIGHT", &c.Fitness.AvailabilityWeight)
	envInt("DELEGATION_MAX_PARTICIPANTS", &c.Delegation.MaxParticipants)
	envInt("COLLABORATION_CONSENSUS_MAX_ROUNDS", &c.Collaboration.ConsensusMaxRounds)
	envFloat("COLLABORATION_CONSENSUS_THRESHOLD", &c.Collaboration.ConsensusThreshold)
	envFloat("COLLABORATION_PROGRESS_INCREMENT", &c.Collaboration.ProgressIncrement)
	envBool("METRICS_ENABLED", &c.Metrics.Enabled)
	envString("METRICS_NAMESPACE", &c.Metrics.Namespace)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	sum := c.Fitness.SpecializationWeight + c.Fitness.SkillWeight + c.Fitness.AvailabilityWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("fitness weights must sum to 1, got %.3f", sum)
	}
	if c.Fitness.SpecializationWeight < 0 || c.Fitness.SkillWeight < 0 || c.Fitness.AvailabilityWeight < 0 {
		return fmt.Errorf("fitness weights must not be negative")
	}
	if c.Delegation.MaxParticipants < 1 {
		return fmt.Errorf("delegation.max_participants must be at least 1")
	}
	if c.Collaboration.ConsensusMaxRounds < 1 {
		return fmt.Errorf("collaboration.consensus_max_rounds must be at least 1")
	}
	if c.Collaboration.ConsensusThreshold <= 0 || c.Collaboration.ConsensusThreshold > 1 {
		return fmt.Errorf("collaboration.consensus_threshold must be in (0, 1]")
	}
	if c.Collaboration.ProgressIncrement <= 0 || c.Collaboration.ProgressIncrement > 1 {
		return fmt.Errorf("collaboration.progress_increment must be in (0, 1]")
	}
	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		*dst = v
	}
}

func envFloat(key string, dst *float64) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(EnvPrefix + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
