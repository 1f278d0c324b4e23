// services/screen/screen.go
package screen

import (
	"context"

	"usbctester-go/bus"
	"usbctester-go/errcode"
	"usbctester-go/services/fixture"
	"usbctester-go/types"
	"usbctester-go/x/conv"
)

// Display shows a full frame of text lines. Implementations redraw the
// whole frame per call (the panel is small and partial updates are not
// worth the bookkeeping).
type Display interface {
	Show(lines []string)
}

// Spinner glyphs, one step per settle attempt.
var spinner = [4]string{"|", "/", "-", "\\"}

// Service turns fixture events into screen frames. It holds no fixture
// state beyond what the events carry; the sequencer stays the single
// source of truth.
type Service struct {
	disp Display
}

func NewService(disp Display) *Service {
	return &Service{disp: disp}
}

// Start launches the render loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	phaseSub := conn.Subscribe(fixture.TopicPhase())
	progSub := conn.Subscribe(fixture.TopicProgress())
	verdictSub := conn.Subscribe(fixture.TopicVerdict())
	faultSub := conn.Subscribe(fixture.TopicFault())
	defer conn.Disconnect()

	s.disp.Show([]string{"USB C TEST", "POWER ON"})

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-phaseSub.Channel():
			if ev, ok := m.Payload.(fixture.PhaseEvent); ok {
				s.disp.Show(renderPhase(ev))
			}
		case m := <-progSub.Channel():
			if ev, ok := m.Payload.(fixture.ProgressEvent); ok {
				s.disp.Show(renderProgress(ev))
			}
		case m := <-verdictSub.Channel():
			if ev, ok := m.Payload.(fixture.VerdictEvent); ok {
				s.disp.Show(renderVerdict(ev))
			}
		case m := <-faultSub.Channel():
			if ev, ok := m.Payload.(fixture.FaultEvent); ok {
				s.disp.Show(renderFault(ev))
			}
		}
	}
}

func bankCaps(b types.Bank) string {
	if b == types.BankUpper {
		return "UPPER"
	}
	return "LOWER"
}

func renderPhase(ev fixture.PhaseEvent) []string {
	switch ev.Phase {
	case fixture.PhaseMeasure:
		return []string{"Test run:", "", "MEASURE " + bankCaps(ev.Bank)}
	case fixture.PhaseReport:
		return []string{"Test run:", "", "REPORTING"}
	default:
		lines := []string{"Test run:", ""}
		if ev.WaitingLower {
			lines = append(lines, "INSERT LOWER")
		}
		if ev.WaitingUpper {
			lines = append(lines, "INSERT UPPER")
		}
		return lines
	}
}

func renderProgress(ev fixture.ProgressEvent) []string {
	var buf [20]byte
	n := string(conv.Utoa(buf[:], uint64(ev.Matches)))
	return []string{
		"MEASURE " + bankCaps(ev.Bank),
		"",
		"SETTLE " + spinner[ev.Attempt%len(spinner)] + " " + n,
	}
}

func renderVerdict(ev fixture.VerdictEvent) []string {
	if ev.Pass {
		return []string{"RESULT", "", "PASS"}
	}
	lines := []string{"RESULT", "", "FAIL"}
	for _, label := range ev.Failing {
		lines = append(lines, label)
	}
	return lines
}

func renderFault(ev fixture.FaultEvent) []string {
	switch ev.Code {
	case errcode.Aborted:
		return []string{"ABORTED"}
	case errcode.Unstable:
		return []string{"UNSTABLE", "", bankCaps(ev.Bank) + " WONT SETTLE"}
	default:
		return []string{"FAULT", "", string(ev.Code)}
	}
}
