// Package ws2812 drives a WS2812 (NeoPixel) LED chain through a SPI MOSI
// line. Every data bit is sent as three SPI bits at 2.4MHz.
package ws2812

import (
	"errors"
	"fmt"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// SPIFrequency yields 416ns per SPI bit.
const SPIFrequency = 2400 * physic.KiloHertz

// latchBytes hold the line low for >50µs after a frame.
const latchBytes = 16

// ErrIndex indicates a pixel index out of range.
var ErrIndex = errors.New("ws2812: pixel index out of range")

// Strip is a chain of pixels.
type Strip struct {
	conn   conn.Conn
	pixels []colorful.Color
	buf    []byte
}

// New creates a Strip of n pixels, all off.
func New(c conn.Conn, n int) *Strip {
	s := &Strip{conn: c, pixels: make([]colorful.Color, n)}
	s.Fill(colorful.Color{})
	return s
}

// Open connects to the named SPI port.
func Open(port string, n int) (*Strip, io.Closer, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, nil, fmt.Errorf("ws2812: open %q: %w", port, err)
	}
	c, err := p.Connect(SPIFrequency, spi.Mode0, 8)
	if err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("ws2812: connect %q: %w", port, err)
	}
	return New(c, n), p, nil
}

// Len returns the number of pixels.
func (s *Strip) Len() int {
	return len(s.pixels)
}

// Pixel returns the color of pixel i.
func (s *Strip) Pixel(i int) colorful.Color {
	return s.pixels[i]
}

// Set changes pixel i. Call Write to display.
func (s *Strip) Set(i int, c colorful.Color) error {
	if i < 0 || i >= len(s.pixels) {
		return fmt.Errorf("%w: %d", ErrIndex, i)
	}
	s.pixels[i] = c.Clamped()
	return nil
}

// Fill sets every pixel to c.
func (s *Strip) Fill(c colorful.Color) {
	c = c.Clamped()
	for i := range s.pixels {
		s.pixels[i] = c
	}
}

// Write sends all pixels to the chain.
func (s *Strip) Write() error {
	s.buf = Encode(s.buf[:0], s.pixels)
	return s.conn.Tx(s.buf, nil)
}

// String implements fmt.Stringer.
func (s *Strip) String() string {
	return fmt.Sprintf("WS2812{%s, %d}", s.conn, len(s.pixels))
}

// Encode appends the SPI bit stream for pixels, in GRB order, followed by
// the latch.
func Encode(dst []byte, pixels []colorful.Color) []byte {
	for _, c := range pixels {
		r, g, b := c.Clamped().RGB255()
		dst = appendByte(dst, g)
		dst = appendByte(dst, r)
		dst = appendByte(dst, b)
	}
	for i := 0; i < latchBytes; i++ {
		dst = append(dst, 0)
	}
	return dst
}

// appendByte expands v to 24 bits: 1 -> 110, 0 -> 100.
func appendByte(dst []byte, v byte) []byte {
	var bits uint32
	for i := 7; i >= 0; i-- {
		bits <<= 3
		if v&(1<<uint(i)) != 0 {
			bits |= 0x6
		} else {
			bits |= 0x4
		}
	}
	return append(dst, byte(bits>>16), byte(bits>>8), byte(bits))
}
