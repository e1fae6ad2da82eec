// Package tuning loads tuning.yaml: operational server knobs. Game economics
// live in config.data and the catalog files, never here.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Session I/O.
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	MaxLineBytes        int `yaml:"max_line_bytes"`

	// Per-session command rate limit (token bucket).
	CommandsPerSecond float64 `yaml:"commands_per_second"`
	CommandBurst      int     `yaml:"command_burst"`

	// Background scheduler poll interval.
	SchedulerPollSeconds int `yaml:"scheduler_poll_seconds"`

	// Persistence.
	AutosaveMinutes int  `yaml:"autosave_minutes"`
	AuditLog        bool `yaml:"audit_log"`
}

func Defaults() Tuning {
	return Tuning{
		ReadTimeoutSeconds:   300,
		WriteTimeoutSeconds:  10,
		MaxLineBytes:         4096,
		CommandsPerSecond:    8,
		CommandBurst:         16,
		SchedulerPollSeconds: 30,
		AutosaveMinutes:      10,
		AuditLog:             true,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) validate() error {
	if t.ReadTimeoutSeconds <= 0 {
		return fmt.Errorf("read_timeout_seconds must be positive")
	}
	if t.MaxLineBytes < 64 {
		return fmt.Errorf("max_line_bytes too small")
	}
	if t.CommandsPerSecond <= 0 || t.CommandBurst < 1 {
		return fmt.Errorf("command rate limit must be positive")
	}
	if t.SchedulerPollSeconds <= 0 {
		return fmt.Errorf("scheduler_poll_seconds must be positive")
	}
	return nil
}
