// Package comm carries Typed envelopes over a packet transport and pairs
// command replies with their commands.
package comm

// PacketReader reads whole packets.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes whole packets.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads and writes packets.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
