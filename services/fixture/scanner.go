// services/fixture/scanner.go
package fixture

import (
	"usbctester-go/errcode"
	"usbctester-go/types"
)

// Scanner reads whole banks through the calibrated reader.
type Scanner struct {
	rd        *Reader
	threshold types.Reading
}

func NewScanner(rd *Reader, threshold types.Reading) *Scanner {
	return &Scanner{rd: rd, threshold: threshold}
}

// Scan reads every pin of the bank in physical order. A reader fault is
// never fatal: the pin gets MaxReading, classifies as open, and the test
// fails safe.
func (s *Scanner) Scan(bank types.Bank) types.BankResult {
	pins := types.BankPins(bank)
	res := make(types.BankResult, len(pins))
	for i, p := range pins {
		v, err := s.rd.Read(p)
		if err != nil {
			println("[fixture] read failed:", p.Label, string(errcode.Of(err)))
			v = types.MaxReading
		}
		res[i] = types.PinReading{Label: p.Label, Value: v}
	}
	return res
}

// AnyConnected reports whether any pin of the bank reads below the
// no-connect threshold, i.e. something was just inserted on that side.
func (s *Scanner) AnyConnected(bank types.Bank) bool {
	for _, pr := range s.Scan(bank) {
		if pr.Value < s.threshold {
			return true
		}
	}
	return false
}
