package types

// Reading is a calibration-relative measurement for one pin. Lower means
// more strongly pulled toward ground by a connected conductor; values at or
// above the no-connect threshold classify as open.
type Reading uint16

const (
	// MaxReading substitutes for any pin that could not be measured, so
	// faults always classify as open and the test fails safe.
	MaxReading Reading = 0xFFFF

	// DefaultThreshold is the no-connect threshold in raw counts.
	DefaultThreshold Reading = 1000
)

// PinReading pairs a pin label with its measured value.
type PinReading struct {
	Label string
	Value Reading
}

// BankResult is one full scan of a bank, one entry per pin in physical order.
type BankResult []PinReading
