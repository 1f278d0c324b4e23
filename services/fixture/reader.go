// services/fixture/reader.go
package fixture

import (
	"usbctester-go/errcode"
	"usbctester-go/types"
	"usbctester-go/x/timems"
)

// Converter is the shared analog converter: select-and-start, poll for done,
// read the result. One conversion in flight at a time.
type Converter interface {
	Start(channel uint8)
	Busy() bool
	Result() uint16
}

// Mux routes one logical pin (or nothing) to the converter input.
type Mux interface {
	Select(channel uint8)
	Neutral()
}

// Reader produces calibration-relative readings for single pins. It owns the
// converter+mux pair for the duration of each Read: the
// neutral/settle/sample/select/settle/sample/neutral sequence must not be
// interleaved with any other converter use.
type Reader struct {
	clock *timems.Clock
	conv  Converter
	mux   Mux
	cfg   types.FixtureConfig
	known [16]bool
}

func NewReader(clock *timems.Clock, conv Converter, mux Mux, cfg types.FixtureConfig) *Reader {
	r := &Reader{clock: clock, conv: conv, mux: mux, cfg: cfg}
	for _, p := range types.LowerPins {
		r.known[p.Channel] = true
	}
	for _, p := range types.UpperPins {
		r.known[p.Channel] = true
	}
	return r
}

// Read measures one pin relative to a fresh calibration baseline.
// The baseline is sampled with the mux in its neutral state, the measurement
// with the pin routed through; the difference cancels converter offset.
// A measurement at or above the baseline clamps to 0 instead of underflowing.
func (r *Reader) Read(pin types.Pin) (types.Reading, error) {
	if int(pin.Channel) >= len(r.known) || !r.known[pin.Channel] {
		return 0, errcode.UnknownChannel
	}

	r.mux.Neutral()
	r.clock.DelayMs(r.cfg.SettleDelayMs)
	cal, err := r.sample(pin.Channel)
	if err != nil {
		return 0, err
	}

	r.mux.Select(pin.Channel)
	r.clock.DelayMs(r.cfg.SettleDelayMs)
	meas, err := r.sample(pin.Channel)
	r.mux.Neutral()
	if err != nil {
		return 0, err
	}

	if meas >= cal {
		return 0, nil
	}
	return types.Reading(cal - meas), nil
}

// sample averages SamplesPerRead conversions on one channel. Raw
// single-conversion noise is larger than the pass/fail margin, so a lone
// conversion is never trusted. Each done-poll is bounded by ConvTimeoutMs;
// a converter that never signals done surfaces as ADCTimeout rather than a
// hung fixture.
func (r *Reader) sample(channel uint8) (uint16, error) {
	var sum uint32
	for i := 0; i < r.cfg.SamplesPerRead; i++ {
		r.conv.Start(channel)
		deadline := r.clock.Now().AddMs(r.cfg.ConvTimeoutMs)
		for r.conv.Busy() {
			if !r.clock.Now().Less(deadline) {
				return 0, errcode.ADCTimeout
			}
		}
		sum += uint32(r.conv.Result())
	}
	return uint16(sum / uint32(r.cfg.SamplesPerRead)), nil
}
