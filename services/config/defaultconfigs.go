// services/config/defaultconfigs.go
package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID passed to NewService
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgFixtureRev2 = `{
  "fixture": {
      "threshold": 1000,
      "settle_delay_ms": 2,
      "samples_per_read": 16,
      "stable_target": 4,
      "settle_budget_s": 60,
      "switch_debounce_ms": 10,
      "conv_timeout_ms": 5
  },
  "heartbeat": {
      "interval": 1
  }
}`

var embeddedConfigs = map[string][]byte{
	"usbc-fixture-rev2": []byte(cfgFixtureRev2),
}
