// services/fixture/topics.go
package fixture

import (
	"usbctester-go/bus"
	"usbctester-go/errcode"
	"usbctester-go/types"
)

func TopicPhase() bus.Topic    { return bus.T("fixture", "phase") }
func TopicProgress() bus.Topic { return bus.T("fixture", "progress") }
func TopicVerdict() bus.Topic  { return bus.T("fixture", "verdict") }
func TopicFault() bus.Topic    { return bus.T("fixture", "fault") }

// PhaseEvent marks entry into a sequencer phase.
type PhaseEvent struct {
	Phase Phase
	Bank  types.Bank // bank being measured; meaningful in PhaseMeasure
	// Banks still waiting for insertion; drives the INSERT banners.
	WaitingLower bool
	WaitingUpper bool
}

// ProgressEvent is emitted once per settle attempt while measuring.
type ProgressEvent struct {
	Bank    types.Bank
	Attempt int // total scans this measure phase
	Matches int // consecutive identical snapshots so far
}

// VerdictEvent carries the final pass/fail and up to MaxReportedPins failing
// pin labels, lower bank first.
type VerdictEvent struct {
	Pass    bool
	Failing []string
}

// FaultEvent reports a non-fatal sequencer fault (abort, unstable bank).
type FaultEvent struct {
	Code errcode.Code
	Bank types.Bank
}
