package types

// Bank is one of the two physical pin groups of the USB-C connector under
// test. The lower bank carries the 12 straight-through conductors, the upper
// bank the 4 reverse-orientation ones.
type Bank uint8

const (
	BankLower Bank = iota
	BankUpper
)

func (b Bank) String() string {
	if b == BankUpper {
		return "upper"
	}
	return "lower"
}

// Pin identifies one physical test pin: the logical converter/mux channel it
// is wired to, plus the label used in diagnostic output.
type Pin struct {
	Channel uint8
	Label   string
}

// The fixture wiring. Channel numbers are the mux enable positions on the
// test board; slice order is physical pin order and is what diagnostic
// reports follow.
var (
	LowerPins = []Pin{
		{Channel: 12, Label: "A1-GND"},
		{Channel: 14, Label: "A4-VBUS"},
		{Channel: 15, Label: "A5-CC1"},
		{Channel: 0, Label: "A6-D1P"},
		{Channel: 1, Label: "A7-D1N"},
		{Channel: 13, Label: "A9-VBUS"},
		{Channel: 2, Label: "A12-GND"},
		{Channel: 7, Label: "B1-GND"},
		{Channel: 3, Label: "B4-VBUS"},
		{Channel: 5, Label: "B5-CC2"},
		{Channel: 6, Label: "B9-VBUS"},
		{Channel: 4, Label: "B12-GND"},
	}
	UpperPins = []Pin{
		{Channel: 9, Label: "B6-D2P"},
		{Channel: 8, Label: "B7-D2N"},
		{Channel: 10, Label: "EX-VBUS"},
		{Channel: 11, Label: "EX-GND"},
	}
)

// BankPins returns the pin table for a bank, in physical order.
func BankPins(b Bank) []Pin {
	if b == BankUpper {
		return UpperPins
	}
	return LowerPins
}
