// services/config/config.go
package config

import (
	"errors"

	"usbctester-go/bus"
	"usbctester-go/types"

	"github.com/andreyvit/tinyjson"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Load parses the embedded config for a device into its top-level sections.
func Load(device string) (map[string]any, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errors.New("no embedded config for device: " + device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, errors.New("embedded config is not a JSON object")
	}
	return m, nil
}

// Fixture decodes the "fixture" section into a normalized FixtureConfig.
// Missing or malformed fields fall back to board defaults.
func Fixture(sections map[string]any) types.FixtureConfig {
	var c types.FixtureConfig
	m, _ := sections["fixture"].(map[string]any)
	c.Threshold = types.Reading(num(m, "threshold"))
	c.SettleDelayMs = uint32(num(m, "settle_delay_ms"))
	c.SamplesPerRead = int(num(m, "samples_per_read"))
	c.StableTarget = int(num(m, "stable_target"))
	c.SettleBudgetS = uint32(num(m, "settle_budget_s"))
	c.SwitchDebounceMs = uint32(num(m, "switch_debounce_ms"))
	c.ConvTimeoutMs = uint32(num(m, "conv_timeout_ms"))
	return c.Normalize()
}

func num(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	v, _ := m[key].(float64)
	return v
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

// Service publishes each top-level config section as a retained message on
// "config/<key>", so late-starting services pick their section up on
// subscribe.
type Service struct {
	Name   string
	Device string
}

func NewService(device string) *Service {
	return &Service{Name: serviceName, Device: device}
}

// Publish parses the device config once, retains each top-level section on
// "config/<key>", and returns the sections for direct use by the caller.
func (s *Service) Publish(conn *bus.Connection) (map[string]any, error) {
	m, err := Load(s.Device)
	if err != nil {
		return nil, err
	}
	for k, v := range m {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		})
	}
	return m, nil
}
