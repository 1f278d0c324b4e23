// services/fixture/sequencer.go
package fixture

import (
	"usbctester-go/bus"
	"usbctester-go/errcode"
	"usbctester-go/types"
	"usbctester-go/x/mathx"
	"usbctester-go/x/timems"
)

// Phase of the test state machine.
type Phase uint8

const (
	PhaseWaitInsert Phase = iota
	PhaseMeasure
	PhaseReport
)

func (p Phase) String() string {
	switch p {
	case PhaseMeasure:
		return "measure"
	case PhaseReport:
		return "report"
	default:
		return "wait_insert"
	}
}

// MaxReportedPins caps the failing-pin list in the verdict.
const MaxReportedPins = 5

// RunSwitch is the physical start/stop control: true while the operator
// holds the (active-low) switch. Debouncing happens in the sequencer.
type RunSwitch interface {
	Pressed() bool
}

// BankScanner is what the sequencer needs from the measurement side.
// *Scanner implements it.
type BankScanner interface {
	Scan(bank types.Bank) types.BankResult
	AnyConnected(bank types.Bank) bool
}

// Sequencer drives a full test run: wait for insertion, debounce and
// measure each bank, report the verdict. Strictly single-threaded; every
// wait is a busy-poll on the clock, and the switch is sampled at the top of
// each loop iteration so a press aborts from any phase.
type Sequencer struct {
	clock *timems.Clock
	scan  BankScanner
	track *Tracker
	sw    RunSwitch
	conn  *bus.Connection
	cfg   types.FixtureConfig

	phase    Phase
	current  types.Bank
	finished [2]bool
	results  [2]types.BankResult

	attempt        int
	settleDeadline timems.TimeMs
}

func NewSequencer(clock *timems.Clock, scan BankScanner, track *Tracker, sw RunSwitch, conn *bus.Connection, cfg types.FixtureConfig) *Sequencer {
	return &Sequencer{
		clock: clock,
		scan:  scan,
		track: track,
		sw:    sw,
		conn:  conn,
		cfg:   cfg,
	}
}

// Run is the outer control loop: idle until the switch starts a session,
// run it, repeat. Never returns.
func (s *Sequencer) Run() {
	for {
		s.waitForStart()
		s.RunSession()
	}
}

func (s *Sequencer) waitForStart() {
	for !s.switchEngaged() {
	}
	// The starting press must not double as the abort press.
	s.waitForRelease()
}

// RunSession executes one test run to verdict or abort.
func (s *Sequencer) RunSession() {
	s.reset()
	s.emitPhase()

	for {
		if s.switchEngaged() {
			s.conn.Emit(TopicFault(), FaultEvent{Code: errcode.Aborted, Bank: s.current})
			s.waitForRelease()
			return
		}

		switch s.phase {
		case PhaseWaitInsert:
			if s.finished[types.BankLower] && s.finished[types.BankUpper] {
				s.phase = PhaseReport
				s.emitPhase()
				continue
			}
			// Lower before upper: fixed precedence when both sides show a
			// connection at once. Observable behavior, do not reorder.
			if !s.finished[types.BankLower] && s.scan.AnyConnected(types.BankLower) {
				s.beginMeasure(types.BankLower)
				continue
			}
			if !s.finished[types.BankUpper] && s.scan.AnyConnected(types.BankUpper) {
				s.beginMeasure(types.BankUpper)
			}

		case PhaseMeasure:
			res := s.scan.Scan(s.current)
			settled := s.track.Observe(res)
			s.attempt++
			s.conn.Emit(TopicProgress(), ProgressEvent{
				Bank:    s.current,
				Attempt: s.attempt,
				Matches: s.track.Matches(),
			})
			if settled {
				s.results[s.current] = res
				s.finished[s.current] = true
				s.phase = PhaseWaitInsert
				s.emitPhase()
				continue
			}
			if !s.clock.Now().Less(s.settleDeadline) {
				// The connector never stabilized within the budget. End the
				// run with a failed verdict instead of looping forever; no
				// result is recorded for the unstable bank.
				s.conn.Emit(TopicFault(), FaultEvent{Code: errcode.Unstable, Bank: s.current})
				s.conn.Emit(TopicVerdict(), VerdictEvent{Pass: false, Failing: s.failingPins()})
				s.awaitSwitch()
				return
			}

		case PhaseReport:
			pass, failing := s.verdict()
			s.conn.Emit(TopicVerdict(), VerdictEvent{Pass: pass, Failing: failing})
			s.awaitSwitch()
			return
		}
	}
}

func (s *Sequencer) reset() {
	s.phase = PhaseWaitInsert
	s.finished[types.BankLower] = false
	s.finished[types.BankUpper] = false
	s.results[types.BankLower] = nil
	s.results[types.BankUpper] = nil
	s.track.Reset()
	s.attempt = 0
}

func (s *Sequencer) beginMeasure(bank types.Bank) {
	s.current = bank
	s.track.Reset()
	s.attempt = 0
	s.settleDeadline = s.clock.Now().AddSeconds(s.cfg.SettleBudgetS)
	s.phase = PhaseMeasure
	s.emitPhase()
}

func (s *Sequencer) emitPhase() {
	s.conn.Emit(TopicPhase(), PhaseEvent{
		Phase:        s.phase,
		Bank:         s.current,
		WaitingLower: !s.finished[types.BankLower],
		WaitingUpper: !s.finished[types.BankUpper],
	})
}

// verdict passes iff every stored reading in both banks is at or below the
// threshold. Failing labels are collected lower bank first and capped at
// MaxReportedPins.
func (s *Sequencer) verdict() (bool, []string) {
	failing := s.failingPins()
	return len(failing) == 0, failing
}

func (s *Sequencer) failingPins() []string {
	var failing []string
	for _, bank := range []types.Bank{types.BankLower, types.BankUpper} {
		for _, pr := range s.results[bank] {
			if pr.Value > s.cfg.Threshold {
				failing = append(failing, pr.Label)
			}
		}
	}
	n := mathx.Min(len(failing), MaxReportedPins)
	return failing[:n]
}

// switchEngaged samples the run switch with two debounce delays, so a
// mechanical glitch cannot start or abort a run.
func (s *Sequencer) switchEngaged() bool {
	if !s.sw.Pressed() {
		return false
	}
	s.clock.DelayMs(s.cfg.SwitchDebounceMs)
	if !s.sw.Pressed() {
		return false
	}
	s.clock.DelayMs(s.cfg.SwitchDebounceMs)
	return s.sw.Pressed()
}

func (s *Sequencer) waitForRelease() {
	for s.sw.Pressed() {
		s.clock.DelayMs(s.cfg.SwitchDebounceMs)
	}
}

// awaitSwitch parks after a verdict until the operator presses the switch,
// which ends the session; the next press starts a fresh run.
func (s *Sequencer) awaitSwitch() {
	for !s.switchEngaged() {
	}
	s.waitForRelease()
}
