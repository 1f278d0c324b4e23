// platform/factories_rp2040.go
//go:build rp2040 || rp2350

package platform

import (
	"image/color"
	"machine"
	"runtime/volatile"
	"time"
	"unsafe"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"usbctester-go/services/console"
	"usbctester-go/services/fixture"
	"usbctester-go/services/heartbeat"
	"usbctester-go/services/led"
	"usbctester-go/services/screen"
	"usbctester-go/x/timems"
)

// -----------------------------------------------------------------------------
// Defaults for the Raspberry Pi Pico carrier board (RP2 family)
// -----------------------------------------------------------------------------

// Board wiring.
const (
	pinMuxS0     = machine.GP2
	pinMuxS1     = machine.GP3
	pinMuxS2     = machine.GP4
	pinMuxS3     = machine.GP5
	pinMuxEnable = machine.GP6 // active high
	pinRunSwitch = machine.GP7 // active low, pulled up
	pinLedWhite  = machine.GP10
	pinLedRed    = machine.GP11
	pinLedGreen  = machine.GP12
	pinSense     = machine.GP26
)

const watchdogTimeoutMs = 3000

// RP2040 timer block: free-running 64-bit microsecond counter.
const (
	timerBase = 0x40054000
	timeRawL  = timerBase + 0x28
	timeRawH  = timerBase + 0x24
)

type rp2Counter struct{}

func (rp2Counter) micros() uint64 {
	low := (*volatile.Register32)(unsafe.Pointer(uintptr(timeRawL)))
	high := (*volatile.Register32)(unsafe.Pointer(uintptr(timeRawH)))
	h1 := high.Get()
	l := low.Get()
	h2 := high.Get()
	if h1 != h2 {
		// High word ticked between the two reads; the low word is fresh
		// enough to pair with the second high read.
		l = low.Get()
	}
	return uint64(h2)<<32 | uint64(l)
}

func (c rp2Counter) Low32() uint32 { return uint32(c.micros() / 1000) }
func (c rp2Counter) High8() uint32 { return uint32(c.micros()/1000>>32) & 0xff }

// DefaultCounter reads the hardware timer, scaled to milliseconds.
func DefaultCounter() timems.Counter { return rp2Counter{} }

// rp2Converter drives the on-chip SAR ADC. A conversion completes in a
// couple of microseconds, so Start samples synchronously and Busy never
// reports true; the caller's poll loop falls through on the first check.
type rp2Converter struct {
	adc  machine.ADC
	last uint16
}

func (c *rp2Converter) Start(ch uint8) { c.last = c.adc.Get() }
func (c *rp2Converter) Busy() bool     { return false }
func (c *rp2Converter) Result() uint16 { return c.last }

// rp2Mux selects one of 16 analog channels through an external mux.
// The enable line is dropped before the select bits change so the DUT
// never sees a transient route.
type rp2Mux struct {
	sel [4]machine.Pin
	en  machine.Pin
}

func (m *rp2Mux) Select(ch uint8) {
	m.en.Low()
	for i, p := range m.sel {
		p.Set(ch&(1<<uint(i)) != 0)
	}
	m.en.High()
}

func (m *rp2Mux) Neutral() { m.en.Low() }

// DefaultRig configures the ADC and mux pins and returns both handles.
func DefaultRig() (fixture.Converter, fixture.Mux) {
	machine.InitADC()
	adc := machine.ADC{Pin: pinSense}
	adc.Configure(machine.ADCConfig{})

	m := &rp2Mux{
		sel: [4]machine.Pin{pinMuxS0, pinMuxS1, pinMuxS2, pinMuxS3},
		en:  pinMuxEnable,
	}
	for _, p := range m.sel {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	m.en.Configure(machine.PinConfig{Mode: machine.PinOutput})
	m.en.Low()

	return &rp2Converter{adc: adc}, m
}

type rp2Switch struct {
	p machine.Pin
}

func (s rp2Switch) Pressed() bool { return !s.p.Get() }

// DefaultRunSwitch configures the start button, active low.
func DefaultRunSwitch() fixture.RunSwitch {
	pinRunSwitch.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return rp2Switch{p: pinRunSwitch}
}

type rp2Display struct {
	dev ssd1306.Device
}

var white = color.RGBA{255, 255, 255, 255}

func (d *rp2Display) Show(lines []string) {
	d.dev.ClearBuffer()
	y := int16(14)
	for _, l := range lines {
		tinyfont.WriteLine(&d.dev, &proggy.TinySZ8pt7b, 2, y, l, white)
		y += 13
	}
	d.dev.Display()
}

// DefaultDisplay brings up the OLED on i2c0.
func DefaultDisplay() screen.Display {
	machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
	// The panel needs a beat after a cold reboot before it accepts config.
	time.Sleep(100 * time.Millisecond)
	dev := ssd1306.NewI2C(machine.I2C0)
	dev.Configure(ssd1306.Config{Width: 128, Height: 64, Address: 0x3C, VccState: ssd1306.SWITCHCAPVCC})
	dev.ClearDisplay()
	return &rp2Display{dev: dev}
}

// DefaultConsolePort configures uart0 at 115200 on the board-default pins.
func DefaultConsolePort() console.Port {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       uartx.UART0_TX_PIN,
		RX:       uartx.UART0_RX_PIN,
	})
	return u
}

type rp2Led struct {
	white, red, green machine.Pin
}

func (l rp2Led) White(on bool) { l.white.Set(on) }
func (l rp2Led) Red(on bool)   { l.red.Set(on) }
func (l rp2Led) Green(on bool) { l.green.Set(on) }

// DefaultStatusLed configures the lid LED channels, all off.
func DefaultStatusLed() led.StatusLed {
	l := rp2Led{white: pinLedWhite, red: pinLedRed, green: pinLedGreen}
	for _, p := range []machine.Pin{l.white, l.red, l.green} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	return l
}

type rp2Watchdog struct{}

func (rp2Watchdog) Feed() { machine.Watchdog.Update() }

// DefaultWatchdog arms the hardware watchdog.
func DefaultWatchdog() heartbeat.Watchdog {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: watchdogTimeoutMs})
	machine.Watchdog.Start()
	return rp2Watchdog{}
}
