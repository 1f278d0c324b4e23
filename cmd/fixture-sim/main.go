// Command fixture-sim runs the test sequencer on the host against a
// scripted connector: the operator presses the switch, seats the lower
// bank, flips the plug for the upper bank and reads the verdict. Useful
// for exercising the state machine and screen output without a board.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"usbctester-go/bus"
	"usbctester-go/services/config"
	"usbctester-go/services/fixture"
	"usbctester-go/services/screen"
	"usbctester-go/types"
	"usbctester-go/x/timems"
)

const (
	simBaseline  uint16 = 30000
	simOpenPull  uint16 = 5000 // unrouted or open pin, far from baseline
	simSeatedDip uint16 = 200  // a seated conductor stays near baseline
)

// simRig is a converter+mux pair whose per-channel pull is scripted from
// another goroutine while the sequencer polls it.
type simRig struct {
	mu       sync.Mutex
	selected int
	pending  uint16
	dip      map[uint8]uint16
}

func newSimRig() *simRig {
	return &simRig{selected: -1, dip: make(map[uint8]uint16)}
}

func (r *simRig) Select(ch uint8) {
	r.mu.Lock()
	r.selected = int(ch)
	r.mu.Unlock()
}

func (r *simRig) Neutral() {
	r.mu.Lock()
	r.selected = -1
	r.mu.Unlock()
}

func (r *simRig) Start(ch uint8) {
	r.mu.Lock()
	v := simBaseline
	if r.selected == int(ch) {
		d, seated := r.dip[ch]
		if !seated {
			d = simOpenPull
		}
		v -= d
	}
	r.pending = v
	r.mu.Unlock()
}

func (r *simRig) Busy() bool { return false }

func (r *simRig) Result() uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// seat routes every pin of the bank with the given dip from baseline.
func (r *simRig) seat(bank types.Bank, dip uint16) {
	r.mu.Lock()
	for _, p := range types.BankPins(bank) {
		r.dip[p.Channel] = dip
	}
	r.mu.Unlock()
}

func (r *simRig) remove(bank types.Bank) {
	r.mu.Lock()
	for _, p := range types.BankPins(bank) {
		delete(r.dip, p.Channel)
	}
	r.mu.Unlock()
}

type simSwitch struct {
	down atomic.Bool
}

func (s *simSwitch) Pressed() bool { return s.down.Load() }

func (s *simSwitch) press() {
	s.down.Store(true)
	time.Sleep(100 * time.Millisecond)
	s.down.Store(false)
}

type hostCounter struct {
	start time.Time
}

func (c *hostCounter) ms() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

func (c *hostCounter) Low32() uint32 { return uint32(c.ms()) }
func (c *hostCounter) High8() uint32 { return uint32(c.ms()>>32) & 0xff }

type stdoutDisplay struct{}

func (stdoutDisplay) Show(lines []string) {
	fmt.Println("+----------------")
	for _, l := range lines {
		fmt.Println("|", l)
	}
}

func main() {
	sections, err := config.Load("usbc-fixture-rev2")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg := config.Fixture(sections)

	b := bus.NewBus(64)
	screen.NewService(stdoutDisplay{}).Start(context.Background(), b.NewConnection("screen"))

	rig := newSimRig()
	sw := &simSwitch{}
	clock := timems.NewClock(&hostCounter{start: time.Now()})

	reader := fixture.NewReader(clock, rig, rig, cfg)
	scanner := fixture.NewScanner(reader, cfg.Threshold)
	tracker := fixture.NewTracker(cfg.Threshold, cfg.StableTarget)
	seq := fixture.NewSequencer(clock, scanner, tracker,
		sw, b.NewConnection("fixture"), cfg)

	watch := b.NewConnection("sim")
	phases := watch.Subscribe(fixture.TopicPhase())
	verdicts := watch.Subscribe(fixture.TopicVerdict())

	go seq.Run()

	fmt.Println("sim: pressing run switch")
	sw.press()

	// Wait until the sequencer asks for the lower bank, seat it, then wait
	// for it to finish and flip the plug.
	waitPhase(phases, func(ev fixture.PhaseEvent) bool {
		return ev.Phase == fixture.PhaseWaitInsert && ev.WaitingLower
	})
	fmt.Println("sim: seating lower bank")
	rig.seat(types.BankLower, simSeatedDip)

	waitPhase(phases, func(ev fixture.PhaseEvent) bool {
		return ev.Phase == fixture.PhaseWaitInsert && !ev.WaitingLower
	})
	fmt.Println("sim: flipping to upper bank")
	rig.remove(types.BankLower)
	rig.seat(types.BankUpper, simSeatedDip)

	msg := <-verdicts.Channel()
	v := msg.Payload.(fixture.VerdictEvent)
	if v.Pass {
		fmt.Println("sim: verdict PASS")
	} else {
		fmt.Println("sim: verdict FAIL", v.Failing)
	}

	// End the session so the run loop parks cleanly before we exit.
	sw.press()
	time.Sleep(200 * time.Millisecond)
}

func waitPhase(sub *bus.Subscription, want func(fixture.PhaseEvent) bool) {
	for msg := range sub.Channel() {
		if ev, ok := msg.Payload.(fixture.PhaseEvent); ok && want(ev) {
			return
		}
	}
}
