// x/timems/timems.go
package timems

import "errors"

// TimeMs is a timestamp from the 40-bit hardware millisecond counter:
// a full 32-bit low word plus an 8-bit-significant high word. The low word
// wraps after ~49.7 days of uptime, so all interval math here has to stay
// correct across a single low-word wraparound. The 40-bit counter itself
// wraps after ~34 years, which deadline code treats as the end of time.
type TimeMs struct {
	lo uint32 // low 32 bits of the hardware count
	hi uint32 // high 8 bits of the hardware count
}

const (
	highMask = 0xff

	// EndOfTime is the last representable millisecond before the 40-bit
	// counter rolls over. Second-resolution deadlines saturate here.
	EndOfTime uint64 = 1<<40 - 1
)

var (
	ErrUnderflow = errors.New("underflow")
	ErrOverflow  = errors.New("overflow")
)

// At builds a timestamp from raw counter words. Mostly for tests and the
// debug console; normal code gets timestamps from Clock.Now.
func At(lo, hi uint32) TimeMs {
	return TimeMs{lo: lo, hi: hi & highMask}
}

// LowWord returns the low 32 bits of the timestamp.
func (t TimeMs) LowWord() uint32 { return t.lo }

// HighWord returns the high 8 bits of the timestamp.
func (t TimeMs) HighWord() uint32 { return t.hi }

// AddMs returns t advanced by ms milliseconds. A low-word overflow carries
// into the high word, which itself wraps modulo 256 to match the hardware
// counter's 40-bit width.
func (t TimeMs) AddMs(ms uint32) TimeMs {
	lo := t.lo + ms
	hi := t.hi
	if lo < t.lo {
		hi = (hi + 1) & highMask
	}
	return TimeMs{lo: lo, hi: hi}
}

// AddSeconds returns t advanced by s seconds, saturating at EndOfTime
// instead of wrapping. Long timeouts use this so a wraparound can never
// silently turn a far-future deadline into one that has already passed.
func (t TimeMs) AddSeconds(s uint32) TimeMs {
	target := t.abs() + uint64(s)*1000
	if target > EndOfTime {
		target = EndOfTime
	}
	return TimeMs{lo: uint32(target), hi: uint32(target>>32) & highMask}
}

// Sub returns the milliseconds elapsed from earlier to t.
// ErrUnderflow when t is before earlier; ErrOverflow when the true
// difference does not fit in 32 bits. High words differing by exactly one
// is the low-word-wrapped-mid-interval case: the wrapping low-word
// subtraction borrows the bit back and recovers the true magnitude.
func (t TimeMs) Sub(earlier TimeMs) (uint32, error) {
	if t.Less(earlier) {
		return 0, ErrUnderflow
	}
	switch (t.hi - earlier.hi) & highMask {
	case 0, 1:
		return t.lo - earlier.lo, nil
	default:
		return 0, ErrOverflow
	}
}

// Compare orders timestamps by high word, low word as tie-break.
// This is a total order for all values before the 40-bit rollover.
func (t TimeMs) Compare(o TimeMs) int {
	switch {
	case t.hi != o.hi:
		if t.hi < o.hi {
			return -1
		}
		return 1
	case t.lo != o.lo:
		if t.lo < o.lo {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (t TimeMs) Less(o TimeMs) bool { return t.Compare(o) < 0 }

func (t TimeMs) abs() uint64 {
	return uint64(t.hi&highMask)<<32 | uint64(t.lo)
}

// Counter exposes the free-running hardware millisecond counter as two
// register reads. High8 must never decrease between two reads.
type Counter interface {
	Low32() uint32
	High8() uint32
}

// Clock turns a Counter into comparison-safe timestamps and is the only
// blocking primitive in the firmware: every debounce delay and timeout is
// a busy-poll against it.
type Clock struct {
	cnt Counter
}

func NewClock(cnt Counter) *Clock {
	return &Clock{cnt: cnt}
}

// Now samples the counter. The two words are read high-low-high and the
// read retried if the high word moved, so a rollover between the register
// reads cannot produce a torn timestamp.
func (c *Clock) Now() TimeMs {
	hi := c.cnt.High8()
	for {
		lo := c.cnt.Low32()
		again := c.cnt.High8()
		if again == hi {
			return TimeMs{lo: lo, hi: hi & highMask}
		}
		hi = again
	}
}

// SleepUntil busy-polls Now until the deadline has passed. Single-threaded,
// no yielding; callers own the whole CPU while they wait.
func (c *Clock) SleepUntil(deadline TimeMs) {
	for c.Now().Less(deadline) {
	}
}

// DelayMs blocks for ms milliseconds.
func (c *Clock) DelayMs(ms uint32) {
	c.SleepUntil(c.Now().AddMs(ms))
}
