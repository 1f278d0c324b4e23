package types

import "usbctester-go/x/mathx"

// FixtureConfig is supplied on topic "config/fixture".

type FixtureConfig struct {
	Threshold        Reading `json:"threshold"`
	SettleDelayMs    uint32  `json:"settle_delay_ms"`
	SamplesPerRead   int     `json:"samples_per_read"`
	StableTarget     int     `json:"stable_target"`
	SettleBudgetS    uint32  `json:"settle_budget_s"`
	SwitchDebounceMs uint32  `json:"switch_debounce_ms"`
	ConvTimeoutMs    uint32  `json:"conv_timeout_ms"`
}

// DefaultFixtureConfig returns the board defaults; the embedded device
// config normally overrides these.
func DefaultFixtureConfig() FixtureConfig {
	return FixtureConfig{
		Threshold:        DefaultThreshold,
		SettleDelayMs:    2,
		SamplesPerRead:   16,
		StableTarget:     4,
		SettleBudgetS:    60,
		SwitchDebounceMs: 10,
		ConvTimeoutMs:    5,
	}
}

// Normalize fills zero-valued fields with defaults so a partial embedded
// config cannot disable debouncing or averaging outright.
func (c FixtureConfig) Normalize() FixtureConfig {
	d := DefaultFixtureConfig()
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	if c.SettleDelayMs == 0 {
		c.SettleDelayMs = d.SettleDelayMs
	}
	if c.SamplesPerRead <= 0 {
		c.SamplesPerRead = d.SamplesPerRead
	}
	if c.StableTarget <= 0 {
		c.StableTarget = d.StableTarget
	}
	if c.SettleBudgetS == 0 {
		c.SettleBudgetS = d.SettleBudgetS
	}
	if c.SwitchDebounceMs == 0 {
		c.SwitchDebounceMs = d.SwitchDebounceMs
	}
	if c.ConvTimeoutMs == 0 {
		c.ConvTimeoutMs = d.ConvTimeoutMs
	}
	// Keep averaging and stability inside sane hardware bounds.
	c.SamplesPerRead = mathx.Clamp(c.SamplesPerRead, 1, 256)
	c.StableTarget = mathx.Clamp(c.StableTarget, 1, 64)
	return c
}
