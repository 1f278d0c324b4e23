// services/heartbeat/service.go
package heartbeat

import (
	"context"
	"time"

	"usbctester-go/bus"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

// Watchdog is the hardware watchdog handle. Feed must be called faster
// than the hardware timeout or the board resets.
type Watchdog interface {
	Feed()
}

// Service feeds the watchdog on a fixed tick. It runs beside the test
// sequencer and deliberately knows nothing about it: a wedged sequencer
// stops the feeder only if it wedges the whole scheduler, which is exactly
// when the watchdog should fire.
type Service struct {
	wd Watchdog
}

func NewService(wd Watchdog) *Service {
	return &Service{wd: wd}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			s.wd.Feed()
		case msg := <-cfgSub.Channel():
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"].(float64); ok && iv > 0 {
					tick.Reset(time.Duration(iv * float64(time.Second)))
					println("[heartbeat] interval updated")
				}
			}
		}
	}
}

// Start the watchdog feeder.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
