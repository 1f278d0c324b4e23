// services/console/console.go
package console

import (
	"context"
	"time"

	"usbctester-go/x/conv"
	"usbctester-go/x/timems"
)

// Port is the byte stream the console talks over (a UART on hardware).
type Port interface {
	Buffered() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

const help = "" +
	"Console:\r\n" +
	" h => Help\r\n" +
	" t => Now ms (hex hi/lo)\r\n" +
	" u => Uptime seconds\r\n"

// Service is the single-byte debug console. ANSI escape sequences (arrow
// keys and the like) would otherwise trigger commands by accident, so the
// escape byte toggles a mute that swallows everything until the next
// escape.
type Service struct {
	port  Port
	clock *timems.Clock
	muted bool
}

func NewService(port Port, clock *timems.Clock) *Service {
	return &Service{port: port, clock: clock}
}

// Start launches the poll loop.
func (s *Service) Start(ctx context.Context) {
	go s.serviceLoop(ctx)
}

func (s *Service) serviceLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if s.port.Buffered() == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		b, err := s.port.ReadByte()
		if err != nil {
			continue
		}
		s.handle(b)
	}
}

func (s *Service) handle(b byte) {
	if b == 0x1B {
		s.muted = !s.muted
		return
	}
	if s.muted {
		return
	}
	switch b {
	case 'h', 'H', '?':
		s.print(help)
	case 't':
		now := s.clock.Now()
		var buf [8]byte
		s.print("NowMs ")
		s.write(conv.U32Hex(buf[:], now.HighWord()))
		s.print(" ")
		s.write(conv.U32Hex(buf[:], now.LowWord()))
		s.print("\r\n")
	case 'u':
		now := s.clock.Now()
		secs := (uint64(now.HighWord())<<32 | uint64(now.LowWord())) / 1000
		var buf [20]byte
		s.print("Uptime ")
		s.write(conv.Utoa(buf[:], secs))
		s.print("s\r\n")
	}
}

func (s *Service) print(str string) { _, _ = s.port.Write([]byte(str)) }
func (s *Service) write(p []byte)   { _, _ = s.port.Write(p) }
