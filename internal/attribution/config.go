// Package attribution implements the waterfall attribution engine: a
// priority-ordered matching pipeline that joins each client against five
// outreach datasets and emits exactly one decision per client.
package attribution

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Window is an inclusive day-difference acceptance range.
type Window struct {
	MinDays int `yaml:"min_days"`
	MaxDays int `yaml:"max_days"`
}

// Contains reports whether a day difference falls inside the window.
func (w Window) Contains(days int) bool {
	return days >= w.MinDays && days <= w.MaxDays
}

// ConfidenceConfig fixes the trust score per matching method. Confidence is
// a function of method, never of evidence strength.
type ConfidenceConfig struct {
	Email      float64 `yaml:"email"`
	Instagram  float64 `yaml:"instagram"`
	Audit      float64 `yaml:"audit"`
	Invitation float64 `yaml:"invitation"`
}

// Config is the channel configuration for one engine run. The compiled-in
// defaults reproduce production behavior; a YAML file can narrow windows for
// experiments without a rebuild.
type Config struct {
	// EmailWindow accepts contacts strictly before signup, up to 90 days prior.
	EmailWindow Window `yaml:"email_window"`
	// AuditWindow straddles zero: audits can land just after signup.
	AuditWindow Window `yaml:"audit_window"`
	// NewMethodCutoff separates old-method from new-method invite contacts
	// (YYYY-MM-DD).
	NewMethodCutoff string           `yaml:"new_method_cutoff"`
	Confidence      ConfidenceConfig `yaml:"confidence"`
}

// DefaultConfig returns the production channel configuration.
func DefaultConfig() *Config {
	return &Config{
		EmailWindow:     Window{MinDays: 1, MaxDays: 90},
		AuditWindow:     Window{MinDays: -30, MaxDays: 30},
		NewMethodCutoff: "2025-03-01",
		Confidence: ConfidenceConfig{
			Email:      0.90,
			Instagram:  0.75,
			Audit:      0.70,
			Invitation: 0.85,
		},
	}
}

// LoadConfig reads channel config from a YAML file. Fields left at their
// zero value fall back to the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "attribution: read config %s", path)
	}

	// The YAML has a top-level "channels" key.
	var wrapper struct {
		Channels Config `yaml:"channels"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "attribution: parse config")
	}

	cfg := wrapper.Channels
	def := DefaultConfig()
	if cfg.EmailWindow == (Window{}) {
		cfg.EmailWindow = def.EmailWindow
	}
	if cfg.AuditWindow == (Window{}) {
		cfg.AuditWindow = def.AuditWindow
	}
	if cfg.NewMethodCutoff == "" {
		cfg.NewMethodCutoff = def.NewMethodCutoff
	}
	if cfg.Confidence.Email == 0 {
		cfg.Confidence.Email = def.Confidence.Email
	}
	if cfg.Confidence.Instagram == 0 {
		cfg.Confidence.Instagram = def.Confidence.Instagram
	}
	if cfg.Confidence.Audit == 0 {
		cfg.Confidence.Audit = def.Confidence.Audit
	}
	if cfg.Confidence.Invitation == 0 {
		cfg.Confidence.Invitation = def.Confidence.Invitation
	}

	if _, err := cfg.CutoffTime(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CutoffTime parses NewMethodCutoff pinned to noon UTC.
func (c *Config) CutoffTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.NewMethodCutoff)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "attribution: invalid new_method_cutoff %q", c.NewMethodCutoff)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), nil
}
