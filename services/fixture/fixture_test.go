// services/fixture/fixture_test.go
//
// Shared fakes for the fixture packages: a scripted hardware counter, a
// combined converter+mux rig, and a programmable run switch.
package fixture

import (
	"usbctester-go/types"
	"usbctester-go/x/timems"
)

// fakeCounter advances one millisecond per low-word read so busy-wait loops
// terminate quickly in tests.
type fakeCounter struct {
	lo uint32
	hi uint32
}

func (f *fakeCounter) Low32() uint32 {
	v := f.lo
	f.lo++
	if f.lo == 0 {
		f.hi = (f.hi + 1) & 0xff
	}
	return v
}

func (f *fakeCounter) High8() uint32 { return f.hi }

func testClock() *timems.Clock { return timems.NewClock(&fakeCounter{}) }

// fakeRig emulates the shared converter+mux pair. With the mux neutral a
// conversion returns cal; with channel ch routed through it returns
// cal-delta[ch] (clamped to uint16 range). delta stands in for how hard the
// DUT side pulls the input away from the baseline: small delta = connected
// conductor holding the level, large delta = open pin.
type fakeRig struct {
	cal      uint16
	delta    [16]int
	selected int // -1 = neutral

	busyPolls int // Busy() answers true this many times per conversion
	stuckCh   int // conversions on this channel never finish (-1 = none)

	pending uint16
	busy    int
	starts  int
	muxLog  []int // -1 for neutral, channel number for select
}

func newFakeRig() *fakeRig {
	return &fakeRig{cal: 30000, selected: -1, stuckCh: -1}
}

func (r *fakeRig) Select(ch uint8) {
	r.selected = int(ch)
	r.muxLog = append(r.muxLog, int(ch))
}

func (r *fakeRig) Neutral() {
	r.selected = -1
	r.muxLog = append(r.muxLog, -1)
}

func (r *fakeRig) Start(ch uint8) {
	r.starts++
	r.busy = r.busyPolls
	if int(ch) == r.stuckCh {
		r.busy = 1 << 30
	}
	v := int(r.cal)
	if r.selected == int(ch) {
		v -= r.delta[ch]
	}
	if v < 0 {
		v = 0
	}
	if v > 0xFFFF {
		v = 0xFFFF
	}
	r.pending = uint16(v)
}

func (r *fakeRig) Busy() bool {
	if r.busy > 0 {
		r.busy--
		return true
	}
	return false
}

func (r *fakeRig) Result() uint16 { return r.pending }

// openAll marks every channel as open (large delta).
func (r *fakeRig) openAll() {
	for i := range r.delta {
		r.delta[i] = 5000
	}
}

// connectBank gives every pin of the bank a connected-looking delta.
func (r *fakeRig) connectBank(bank types.Bank, delta int) {
	for _, p := range types.BankPins(bank) {
		r.delta[p.Channel] = delta
	}
}

// funcSwitch adapts a closure to RunSwitch.
type funcSwitch struct{ fn func() bool }

func (f funcSwitch) Pressed() bool { return f.fn() }

// neverPressed is a run switch that stays released.
var neverPressed = funcSwitch{fn: func() bool { return false }}

// pressFor returns a switch that reports released until trigger() goes
// true, then pressed for holdCalls samples, then released again. Three
// samples is enough to get through the double debounce check.
func pressFor(trigger func() bool, holdCalls int) funcSwitch {
	engaged := false
	remaining := 0
	return funcSwitch{fn: func() bool {
		if !engaged {
			if !trigger() {
				return false
			}
			engaged = true
			remaining = holdCalls
		}
		if remaining > 0 {
			remaining--
			return true
		}
		return false
	}}
}
