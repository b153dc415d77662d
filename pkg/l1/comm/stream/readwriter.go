// Package stream frames packets on a byte stream such as a TCP connection.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPacketSize bounds a received packet.
const MaxPacketSize = 1 << 20

// ReadWriter implements comm.PacketReadWriter. Each packet is prefixed by
// its length as 4 little-endian bytes.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(p, hdr[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(hdr[:])
	if size > MaxPacketSize {
		return nil, fmt.Errorf("stream: packet size %d exceeds %d", size, MaxPacketSize)
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter. Header and payload go out in one
// write.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	_, err := p.Write(append(buf, pkt...))
	return err
}

// Close closes the underlying stream if it is an io.Closer.
func (p *ReadWriter) Close() error {
	if c, ok := p.ReadWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
