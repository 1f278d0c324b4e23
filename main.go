package main

import (
	"context"
	"time"

	"usbctester-go/bus"
	"usbctester-go/platform"
	"usbctester-go/services/config"
	"usbctester-go/services/console"
	"usbctester-go/services/fixture"
	"usbctester-go/services/heartbeat"
	"usbctester-go/services/led"
	"usbctester-go/services/screen"
	"usbctester-go/x/timems"
)

const deviceName = "usbc-fixture-rev2"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot", deviceName)

	ctx := context.Background()
	b := bus.NewBus(16)

	sections, err := config.NewService(deviceName).Publish(b.NewConnection("config"))
	if err != nil {
		println("[main] config load failed:", err.Error())
		sections = map[string]any{}
	}
	cfg := config.Fixture(sections)

	clock := timems.NewClock(platform.DefaultCounter())

	heartbeat.NewService(platform.DefaultWatchdog()).Start(ctx, b.NewConnection("heartbeat"))
	screen.NewService(platform.DefaultDisplay()).Start(ctx, b.NewConnection("screen"))
	led.NewService(platform.DefaultStatusLed()).Start(ctx, b.NewConnection("led"))
	console.NewService(platform.DefaultConsolePort(), clock).Start(ctx)

	converter, mux := platform.DefaultRig()
	reader := fixture.NewReader(clock, converter, mux, cfg)
	scanner := fixture.NewScanner(reader, cfg.Threshold)
	tracker := fixture.NewTracker(cfg.Threshold, cfg.StableTarget)

	seq := fixture.NewSequencer(clock, scanner, tracker,
		platform.DefaultRunSwitch(), b.NewConnection("fixture"), cfg)
	seq.Run()
}
