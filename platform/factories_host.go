// platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"os"
	"time"

	"usbctester-go/services/console"
	"usbctester-go/services/fixture"
	"usbctester-go/services/heartbeat"
	"usbctester-go/services/led"
	"usbctester-go/services/screen"
	"usbctester-go/x/timems"
)

// -----------------------------------------------------------------------------
// Host stand-ins: enough behavior to run the firmware loop natively for
// development. Tests use their own fakes; the simulator in cmd/fixture-sim
// scripts a DUT on top of these.
// -----------------------------------------------------------------------------

type hostCounter struct {
	start time.Time
}

func (c *hostCounter) ms() uint64 {
	return uint64(time.Since(c.start).Milliseconds())
}

func (c *hostCounter) Low32() uint32 { return uint32(c.ms()) }
func (c *hostCounter) High8() uint32 { return uint32(c.ms()>>32) & 0xff }

// DefaultCounter counts milliseconds since process start.
func DefaultCounter() timems.Counter { return &hostCounter{start: time.Now()} }

// hostRig emulates the converter+mux pair with no DUT inserted: every
// routed channel is pulled well away from the neutral baseline, so all
// pins classify as open.
type hostRig struct {
	selected int
	pending  uint16
}

const (
	hostBaseline uint16 = 30000
	hostOpenPull uint16 = 5000
)

func (r *hostRig) Select(ch uint8) { r.selected = int(ch) }
func (r *hostRig) Neutral()        { r.selected = -1 }

func (r *hostRig) Start(ch uint8) {
	v := hostBaseline
	if r.selected == int(ch) {
		v -= hostOpenPull
	}
	r.pending = v
}

func (r *hostRig) Busy() bool     { return false }
func (r *hostRig) Result() uint16 { return r.pending }

// DefaultRig returns the shared converter and mux handles.
func DefaultRig() (fixture.Converter, fixture.Mux) {
	r := &hostRig{selected: -1}
	return r, r
}

type hostSwitch struct{}

func (hostSwitch) Pressed() bool { return false }

// DefaultRunSwitch never starts a run on the host; use the simulator.
func DefaultRunSwitch() fixture.RunSwitch { return hostSwitch{} }

type hostDisplay struct{}

func (hostDisplay) Show(lines []string) {
	os.Stdout.WriteString("+----------------\n")
	for _, l := range lines {
		os.Stdout.WriteString("| " + l + "\n")
	}
}

// DefaultDisplay prints frames to stdout.
func DefaultDisplay() screen.Display { return hostDisplay{} }

type nullPort struct{}

func (nullPort) Buffered() int               { return 0 }
func (nullPort) ReadByte() (byte, error)     { return 0, nil }
func (nullPort) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// DefaultConsolePort has no input on the host.
func DefaultConsolePort() console.Port { return nullPort{} }

type nullWatchdog struct{}

func (nullWatchdog) Feed() {}

// DefaultWatchdog is a no-op on the host.
func DefaultWatchdog() heartbeat.Watchdog { return nullWatchdog{} }

type nullLed struct{}

func (nullLed) White(bool) {}
func (nullLed) Red(bool)   {}
func (nullLed) Green(bool) {}

// DefaultStatusLed is a no-op on the host; the screen frames carry the state.
func DefaultStatusLed() led.StatusLed { return nullLed{} }
