// The `java_protocol` package contains the core structs and functions for working with the Java Edition protocol.
//
// > The Minecraft server accepts connections from TCP clients and communicates with them using packets.
// A packet is a sequence of bytes sent over the TCP connection (note: see `net_structures.ByteArray`).
// The meaning of a packet depends both on its packet ID and the current state of the connection
// (note: each state has its own packet ID counter, so packets in different states can have the same packet ID).
// The initial state of each connection is Handshaking, and state is switched using the packets 'Handshake' and 'Login Success'."
//
// Packet format:
//
// > Packets cannot be larger than (2^21) − 1 or 2 097 151 bytes (the maximum that can be sent in a 3-byte VarInt).
// Moreover, the length field must not be longer than 3 bytes, even if the encoded value is within the limit.
// Unnecessarily long encodings at 3 bytes or below are still allowed.
// For compressed packets, this applies to the Packet Length field, i. e. the compressed length.
//
// See https://minecraft.wiki/w/Java_Edition_protocol/Packets
package java_protocol

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	ns "github.com/go-mclib/bot/net_structures"
)

// State is the phase that the packet is in (handshake, status, login, configuration, play).
// This is not sent over network (server and client automatically transition phases).
type State uint8

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StateConfiguration
	StatePlay
	// StateClosed is a local-only marker; no packets exist in this state.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Bound is the direction that the packet is going.
//
// Serverbound: Client -> Server (C2S)
//
// Clientbound: Server -> Client (S2C)
type Bound uint8

const (
	// Client -> Server (C2S, serverbound)
	C2S Bound = iota
	// Server -> Client (S2C, clientbound)
	S2C
)

// Packet is a generic packet as it's decoded off (or encoded onto) the wire:
// an ID plus a raw payload, scoped to a protocol state and direction. Typed
// packet definitions (in the `packets` subpackage) are Packet values whose
// Data is populated with WithData/UnmarshalData using the reflection codec
// in packet_codec.go.
type Packet struct {
	State    State
	Bound    Bound
	PacketID ns.VarInt
	Data     ns.ByteArray
}

// NewPacket creates an empty packet definition for the given state, direction
// and ID. Packet definitions are typically declared once as package-level
// vars (see the `packets` subpackage) and instantiated per-send via WithData.
func NewPacket(state State, bound Bound, id ns.VarInt) *Packet {
	return &Packet{State: state, Bound: bound, PacketID: id}
}

// WithData marshals data using the struct-tag reflection codec and returns a
// new Packet carrying the encoded payload. The receiver's State/Bound/PacketID
// are preserved; the receiver itself is not mutated.
func (p *Packet) WithData(data any) (*Packet, error) {
	encoded, err := PacketDataToBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode packet 0x%02X: %w", int(p.PacketID), err)
	}
	return &Packet{State: p.State, Bound: p.Bound, PacketID: p.PacketID, Data: encoded}, nil
}

// UnmarshalData decodes the packet's raw payload into dest using the
// reflection codec. dest must be a pointer to a struct matching the packet's
// field layout.
func (p *Packet) UnmarshalData(dest any) error {
	return BytesToPacketData(p.Data, dest)
}

// ToBytes serializes the packet to its on-wire representation. Use
// compressionThreshold < 0 to disable compression.
//
// Wire format (uncompressed):
//
//	packetLength: VarInt(len(packetID) + len(data))
//	packetID:     VarInt
//	data:         ByteArray
//
// Wire format (compressed, threshold T):
//
//	if len(packetID)+len(data) >= T:
//	  packetLength: VarInt(len(dataLength) + len(zlib(packetID+data)))
//	  dataLength:   VarInt(len(packetID)+len(data))
//	  data:         zlib(packetID + data)
//	else:
//	  packetLength: VarInt(len(dataLength) + len(packetID) + len(data))
//	  dataLength:   VarInt(0)
//	  packetID:     VarInt
//	  data:         ByteArray
//
// https://minecraft.wiki/w/Java_Edition_protocol/Packets#Packet_format
func (p *Packet) ToBytes(compressionThreshold int) ([]byte, error) {
	if compressionThreshold >= 0 {
		return p.toBytesCompressed(compressionThreshold)
	}
	return p.toBytesUncompressed()
}

func (p *Packet) toBytesUncompressed() ([]byte, error) {
	idBytes, err := p.PacketID.ToBytes()
	if err != nil {
		return nil, err
	}
	payload := append(idBytes, p.Data...)
	lengthBytes, err := ns.VarInt(len(payload)).ToBytes()
	if err != nil {
		return nil, err
	}
	return append(lengthBytes, payload...), nil
}

func (p *Packet) toBytesCompressed(compressionThreshold int) ([]byte, error) {
	idBytes, err := p.PacketID.ToBytes()
	if err != nil {
		return nil, err
	}
	uncompressed := append(idBytes, p.Data...)

	if len(uncompressed) < compressionThreshold {
		dataLenBytes, err := ns.VarInt(0).ToBytes()
		if err != nil {
			return nil, err
		}
		content := append(dataLenBytes, uncompressed...)
		lengthBytes, err := ns.VarInt(len(content)).ToBytes()
		if err != nil {
			return nil, err
		}
		return append(lengthBytes, content...), nil
	}

	compressed := compressZlib(uncompressed)
	dataLenBytes, err := ns.VarInt(len(uncompressed)).ToBytes()
	if err != nil {
		return nil, err
	}
	content := append(dataLenBytes, compressed...)
	lengthBytes, err := ns.VarInt(len(content)).ToBytes()
	if err != nil {
		return nil, err
	}
	return append(lengthBytes, content...), nil
}

func compressZlib(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}

func decompressZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
