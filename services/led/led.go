// services/led/led.go
package led

import (
	"context"
	"time"

	"usbctester-go/bus"
	"usbctester-go/errcode"
	"usbctester-go/services/fixture"
)

// StatusLed is the three-channel status light on the fixture lid. Channels
// latch until the next call; the service owns all sequencing.
type StatusLed interface {
	White(on bool)
	Red(on bool)
	Green(on bool)
}

type state uint8

const (
	stateIdle state = iota // pulsing white, waiting for an operator
	stateRun               // steady white, session in progress
	statePass              // green
	stateFail              // red
)

var idlePulsePeriod = 500 * time.Millisecond

// Service maps fixture events onto LED states: any phase entry means a
// session is running, the verdict latches green or red until the next
// session, and an abort drops straight back to idle.
type Service struct {
	led   StatusLed
	state state
	pulse bool
}

func NewService(led StatusLed) *Service {
	return &Service{led: led, pulse: true}
}

// Start launches the LED loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	phaseSub := conn.Subscribe(fixture.TopicPhase())
	verdictSub := conn.Subscribe(fixture.TopicVerdict())
	faultSub := conn.Subscribe(fixture.TopicFault())
	defer conn.Disconnect()

	tick := time.NewTicker(idlePulsePeriod)
	defer tick.Stop()

	s.apply()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if s.state == stateIdle {
				s.pulse = !s.pulse
				s.apply()
			}
		case m := <-phaseSub.Channel():
			if _, ok := m.Payload.(fixture.PhaseEvent); ok {
				s.set(stateRun)
			}
		case m := <-verdictSub.Channel():
			if ev, ok := m.Payload.(fixture.VerdictEvent); ok {
				if ev.Pass {
					s.set(statePass)
				} else {
					s.set(stateFail)
				}
			}
		case m := <-faultSub.Channel():
			if ev, ok := m.Payload.(fixture.FaultEvent); ok && ev.Code == errcode.Aborted {
				s.set(stateIdle)
			}
		}
	}
}

func (s *Service) set(st state) {
	s.state = st
	s.pulse = true
	s.apply()
}

func (s *Service) apply() {
	switch s.state {
	case stateRun:
		s.led.White(true)
		s.led.Red(false)
		s.led.Green(false)
	case statePass:
		s.led.White(false)
		s.led.Red(false)
		s.led.Green(true)
	case stateFail:
		s.led.White(false)
		s.led.Red(true)
		s.led.Green(false)
	default:
		// Idle pulses the white channel on the service tick.
		s.led.White(s.pulse)
		s.led.Red(false)
		s.led.Green(false)
	}
}
