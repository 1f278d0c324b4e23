// services/fixture/sequencer_test.go
package fixture

import (
	"testing"

	"usbctester-go/bus"
	"usbctester-go/errcode"
	"usbctester-go/types"
)

// fakeScanner scripts bank behavior without the analog stack. Each bank has
// a present flag and a result generator; flappy banks alternate one pin
// between connected and open so they never settle.
type fakeScanner struct {
	present  [2]bool
	values   [2]types.Reading         // base value for every pin of the bank
	override map[string]types.Reading // per-pin exceptions by label
	flappy   [2]bool
	scans    [2]int
}

func (f *fakeScanner) Scan(bank types.Bank) types.BankResult {
	f.scans[bank]++
	pins := types.BankPins(bank)
	res := make(types.BankResult, len(pins))
	for i, p := range pins {
		v := types.MaxReading
		if f.present[bank] {
			v = f.values[bank]
		}
		if ov, ok := f.override[p.Label]; ok {
			v = ov
		}
		res[i] = types.PinReading{Label: p.Label, Value: v}
	}
	if f.flappy[bank] && f.scans[bank]%2 == 0 {
		res[0].Value = types.MaxReading
	}
	return res
}

func (f *fakeScanner) AnyConnected(bank types.Bank) bool {
	return f.present[bank] && f.values[bank] < types.DefaultThreshold
}

type seqHarness struct {
	seq     *Sequencer
	scanner *fakeScanner
	phase   *bus.Subscription
	verdict *bus.Subscription
	fault   *bus.Subscription
}

func newHarness(t *testing.T, sc *fakeScanner, sw RunSwitch, cfg types.FixtureConfig) *seqHarness {
	t.Helper()
	b := bus.NewBus(64)
	sub := b.NewConnection("test")
	h := &seqHarness{
		scanner: sc,
		phase:   sub.Subscribe(TopicPhase()),
		verdict: sub.Subscribe(TopicVerdict()),
		fault:   sub.Subscribe(TopicFault()),
	}
	tr := NewTracker(cfg.Threshold, cfg.StableTarget)
	h.seq = NewSequencer(testClock(), sc, tr, sw, b.NewConnection("fixture"), cfg)
	return h
}

// pressAfterVerdict releases the sequencer from its post-verdict park.
func (h *seqHarness) pressAfterVerdict() RunSwitch {
	seen := false
	return pressFor(func() bool {
		if !seen {
			select {
			case <-h.verdict.Channel():
				seen = true
			default:
			}
		}
		return seen
	}, 3)
}

func drainVerdict(t *testing.T, h *seqHarness) (VerdictEvent, bool) {
	t.Helper()
	select {
	case m := <-h.verdict.Channel():
		return m.Payload.(VerdictEvent), true
	default:
		return VerdictEvent{}, false
	}
}

func TestSessionPassesWhenBothBanksGood(t *testing.T) {
	sc := &fakeScanner{}
	sc.present[types.BankLower] = true
	sc.present[types.BankUpper] = true
	sc.values[types.BankLower] = 100
	sc.values[types.BankUpper] = 200

	cfg := types.DefaultFixtureConfig()
	h := newHarness(t, sc, nil, cfg)
	h.seq.sw = h.pressAfterVerdict()

	h.seq.RunSession()

	// The switch closure consumed the verdict; the session state has it.
	pass, failing := h.seq.verdict()
	if !pass || len(failing) != 0 {
		t.Fatalf("pass=%v failing=%v, want clean pass", pass, failing)
	}
	if !h.seq.finished[types.BankLower] || !h.seq.finished[types.BankUpper] {
		t.Fatal("banks not marked finished")
	}
	// Settling needs stable-target matches, i.e. target+1 scans per bank.
	if sc.scans[types.BankLower] < cfg.StableTarget+1 {
		t.Fatalf("lower scanned %d times, want >= %d", sc.scans[types.BankLower], cfg.StableTarget+1)
	}
}

func TestLowerBankMeasuredFirst(t *testing.T) {
	sc := &fakeScanner{}
	sc.present[types.BankLower] = true
	sc.present[types.BankUpper] = true
	sc.values[types.BankLower] = 100
	sc.values[types.BankUpper] = 100

	h := newHarness(t, sc, nil, types.DefaultFixtureConfig())
	h.seq.sw = h.pressAfterVerdict()
	h.seq.RunSession()

	var measured []types.Bank
	for {
		select {
		case m := <-h.phase.Channel():
			ev := m.Payload.(PhaseEvent)
			if ev.Phase == PhaseMeasure {
				measured = append(measured, ev.Bank)
			}
			continue
		default:
		}
		break
	}
	if len(measured) != 2 || measured[0] != types.BankLower || measured[1] != types.BankUpper {
		t.Fatalf("measure order %v, want [lower upper]", measured)
	}
}

func TestSessionFailReportsFailingPin(t *testing.T) {
	// One broken conductor on an otherwise good DUT: lower pins read
	// well under threshold except one at 1500.
	sc := &fakeScanner{}
	sc.present[types.BankLower] = true
	sc.present[types.BankUpper] = true
	sc.values[types.BankLower] = 100
	sc.values[types.BankUpper] = 200
	broken := types.LowerPins[7].Label
	sc.override = map[string]types.Reading{broken: 1500}

	h := newHarness(t, sc, nil, types.DefaultFixtureConfig())
	h.seq.sw = h.pressAfterVerdict()
	h.seq.RunSession()

	pass, failing := h.seq.verdict()
	if pass {
		t.Fatal("expected FAIL")
	}
	if len(failing) != 1 || failing[0] != broken {
		t.Fatalf("failing = %v, want [%s]", failing, broken)
	}
}

func TestFailingPinListCappedAcrossBanks(t *testing.T) {
	sc := &fakeScanner{}
	sc.present[types.BankLower] = true
	sc.present[types.BankUpper] = true
	sc.values[types.BankLower] = 100
	sc.values[types.BankUpper] = 200
	// Six lower pins and one upper pin broken: seven failures, five reported.
	sc.override = map[string]types.Reading{}
	for _, p := range types.LowerPins[:6] {
		sc.override[p.Label] = 2000
	}
	sc.override[types.UpperPins[1].Label] = 2000

	h := newHarness(t, sc, nil, types.DefaultFixtureConfig())
	h.seq.sw = h.pressAfterVerdict()
	h.seq.RunSession()

	pass, failing := h.seq.verdict()
	if pass {
		t.Fatal("expected FAIL")
	}
	if len(failing) != MaxReportedPins {
		t.Fatalf("failing list %v, want %d entries", failing, MaxReportedPins)
	}
	for i, p := range types.LowerPins[:MaxReportedPins] {
		if failing[i] != p.Label {
			t.Fatalf("failing[%d] = %q, want %q (lower bank first, physical order)", i, failing[i], p.Label)
		}
	}
}

func TestAbortDuringMeasureRecordsNothing(t *testing.T) {
	sc := &fakeScanner{}
	sc.present[types.BankLower] = true
	sc.values[types.BankLower] = 100
	sc.flappy[types.BankLower] = true // never settles

	h := newHarness(t, sc, nil, types.DefaultFixtureConfig())
	h.seq.sw = pressFor(func() bool { return sc.scans[types.BankLower] >= 3 }, 3)

	h.seq.RunSession()

	select {
	case m := <-h.fault.Channel():
		if ev := m.Payload.(FaultEvent); ev.Code != errcode.Aborted {
			t.Fatalf("fault %v, want aborted", ev.Code)
		}
	default:
		t.Fatal("no abort fault emitted")
	}
	if _, ok := drainVerdict(t, h); ok {
		t.Fatal("verdict emitted for an aborted run")
	}
	if h.seq.results[types.BankLower] != nil || h.seq.finished[types.BankLower] {
		t.Fatal("aborted measure recorded a result")
	}
}

func TestUnstableBankFailsWithinBudget(t *testing.T) {
	sc := &fakeScanner{}
	sc.present[types.BankLower] = true
	sc.values[types.BankLower] = 100
	sc.flappy[types.BankLower] = true

	cfg := types.DefaultFixtureConfig()
	cfg.SettleBudgetS = 1
	h := newHarness(t, sc, nil, cfg)
	h.seq.sw = h.pressAfterVerdict()

	h.seq.RunSession()

	var sawUnstable bool
	for {
		select {
		case m := <-h.fault.Channel():
			if m.Payload.(FaultEvent).Code == errcode.Unstable {
				sawUnstable = true
			}
			continue
		default:
		}
		break
	}
	if !sawUnstable {
		t.Fatal("no unstable fault emitted")
	}
	if h.seq.finished[types.BankLower] {
		t.Fatal("unstable bank marked finished")
	}
}
