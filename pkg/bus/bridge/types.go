// Package bridge carries SPI transfers as packets to a remote bus master,
// e.g. a microcontroller on a serial line or a simulator over MQTT.
//
// A request packet is a sequence byte followed by the frame clocked out.
// The response repeats the sequence byte followed by the bytes clocked in,
// the same length as the frame. A response with only the sequence byte
// reports a fault on the remote bus. Responses with another sequence
// answer abandoned requests and are dropped.
package bridge

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
