// services/fixture/settle.go
package fixture

import "usbctester-go/types"

// Tracker distinguishes a bouncing insertion from a fully seated connector.
// Each Observe reduces a scan to a connected/open snapshot and compares it
// to the previous one: a match increments the stability counter, a mismatch
// resets it. The bank counts as settled once target consecutive matches
// have been seen. Latency is traded for immunity to mechanical bounce and
// converter jitter.
type Tracker struct {
	threshold types.Reading
	target    int

	prev    []bool
	have    bool
	matches int
}

func NewTracker(threshold types.Reading, target int) *Tracker {
	return &Tracker{threshold: threshold, target: target}
}

// Reset clears history; the next Observe starts a fresh settle attempt.
func (t *Tracker) Reset() {
	t.prev = t.prev[:0]
	t.have = false
	t.matches = 0
}

// Matches returns the current consecutive-match count.
func (t *Tracker) Matches() int { return t.matches }

// Observe folds one scan into the tracker and reports whether the bank has
// settled.
func (t *Tracker) Observe(res types.BankResult) bool {
	same := t.have && len(res) == len(t.prev)
	if cap(t.prev) < len(res) {
		t.prev = append(t.prev[:0], make([]bool, len(res))...)
	}
	t.prev = t.prev[:len(res)]
	for i, pr := range res {
		connected := pr.Value < t.threshold
		if same && t.prev[i] != connected {
			same = false
		}
		t.prev[i] = connected
	}
	t.have = true

	if same {
		t.matches++
	} else {
		t.matches = 0
	}
	return t.matches >= t.target
}
