// services/config/config_test.go
package config

import (
	"testing"

	"usbctester-go/bus"
	"usbctester-go/types"
)

func TestLoadEmbedded(t *testing.T) {
	m, err := Load("usbc-fixture-rev2")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m["fixture"]; !ok {
		t.Fatal("missing fixture section")
	}

	cfg := Fixture(m)
	want := types.DefaultFixtureConfig()
	if cfg != want {
		t.Fatalf("decoded %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadUnknownDevice(t *testing.T) {
	if _, err := Load("no-such-board"); err == nil {
		t.Fatal("expected error for unknown device")
	}
}

func TestFixtureNormalizesPartialSection(t *testing.T) {
	sections := map[string]any{
		"fixture": map[string]any{"threshold": float64(800)},
	}
	cfg := Fixture(sections)
	if cfg.Threshold != 800 {
		t.Fatalf("threshold = %d, want 800", cfg.Threshold)
	}
	d := types.DefaultFixtureConfig()
	if cfg.SamplesPerRead != d.SamplesPerRead || cfg.StableTarget != d.StableTarget {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
}

func TestPublishRetainsSections(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("config")
	sections, err := NewService("usbc-fixture-rev2").Publish(conn)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sections["fixture"]; !ok {
		t.Fatal("returned sections missing fixture")
	}

	sub := b.NewConnection("late").Subscribe(bus.T("config", "fixture"))
	select {
	case m := <-sub.Channel():
		if _, ok := m.Payload.(map[string]any); !ok {
			t.Fatalf("payload %T, want object", m.Payload)
		}
	default:
		t.Fatal("fixture section not retained")
	}
}
