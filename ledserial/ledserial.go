// Package ledserial implements the serial protocol between the daemon and
// the strip controller. Host packets carry pixel frames down to the
// controller; device packets carry acks, logs, and decoded IR remote codes
// back up. Every packet ends in a little-endian CRC32 of its bytes.
package ledserial

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Endianness defines the endianness of the protocol.
var Endianness = binary.LittleEndian

// HostPacketType is the type of a host-to-controller packet.
type HostPacketType uint8

const (
	TypeInitializePacket HostPacketType = iota
	TypeClearPacket
	TypeFramePacket
)

// String returns a string representation of the packet type.
func (t HostPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeFramePacket:
		return "frame"
	default:
		return fmt.Sprintf("HostPacketType(%d)", t)
	}
}

// HostPacket is a packet sent from the daemon to the controller.
type HostPacket interface {
	// Type returns the type of packet.
	Type() HostPacketType
}

// InitializePacket tells the controller how many pixels to expect in every
// following FramePacket.
type InitializePacket struct {
	NumLEDs uint16
}

// ClearPacket turns the whole strip off.
type ClearPacket struct{}

// FramePacket commits a full strip frame, three channel bytes per pixel.
type FramePacket struct {
	Pix []uint8
}

func (p InitializePacket) Type() HostPacketType { return TypeInitializePacket }
func (p ClearPacket) Type() HostPacketType      { return TypeClearPacket }
func (p FramePacket) Type() HostPacketType      { return TypeFramePacket }

// DevicePacketType is the type of a controller-to-host packet.
type DevicePacketType uint8

const (
	TypeAckPacket DevicePacketType = iota
	TypeErrorPacket
	TypePanicPacket
	TypeLogPacket
	TypeRemotePacket
)

// String returns a string representation of the packet type.
func (t DevicePacketType) String() string {
	switch t {
	case TypeAckPacket:
		return "ack"
	case TypeErrorPacket:
		return "error"
	case TypePanicPacket:
		return "panic"
	case TypeLogPacket:
		return "log"
	case TypeRemotePacket:
		return "remote"
	default:
		return fmt.Sprintf("DevicePacketType(%d)", t)
	}
}

// DevicePacket is a packet sent from the controller to the daemon.
type DevicePacket interface {
	// Type returns the type of packet.
	Type() DevicePacketType
}

// AckPacket confirms that a host packet was applied.
type AckPacket struct {
	For HostPacketType
}

// ErrorPacket reports a recoverable controller error.
type ErrorPacket struct {
	Message string
}

// PanicPacket reports that the controller cannot recover.
type PanicPacket struct{}

// LogPacket carries a controller log line.
type LogPacket struct {
	Message string
}

// RemotePacket forwards one decoded 32-bit IR remote code. The IR receiver
// is wired to the controller, so codes reach the daemon through this
// channel.
type RemotePacket struct {
	Code uint32
}

func (p AckPacket) Type() DevicePacketType    { return TypeAckPacket }
func (p ErrorPacket) Type() DevicePacketType  { return TypeErrorPacket }
func (p PanicPacket) Type() DevicePacketType  { return TypePanicPacket }
func (p LogPacket) Type() DevicePacketType    { return TypeLogPacket }
func (p RemotePacket) Type() DevicePacketType { return TypeRemotePacket }

// ReadContext carries the strip state a reader needs to size incoming
// frames.
type ReadContext struct {
	// NumLEDs is the number of pixels in the strip, as set by the last
	// InitializePacket.
	NumLEDs uint16
}

// ReadHostPacket reads a host packet from the given reader.
func ReadHostPacket(r io.Reader, context ReadContext) (HostPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	var packet HostPacket
	var ptypeBuf [1]byte
	if _, err := io.ReadFull(r, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read host packet type: %w", err)
	}

	switch ptype := HostPacketType(ptypeBuf[0]); ptype {
	case TypeInitializePacket:
		var p InitializePacket
		if err := binary.Read(r, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read number of LEDs: %w", err)
		}
		packet = p

	case TypeClearPacket:
		packet = ClearPacket{}

	case TypeFramePacket:
		var p FramePacket
		p.Pix = make([]uint8, 3*context.NumLEDs)
		if _, err := io.ReadFull(r, p.Pix); err != nil {
			return nil, fmt.Errorf("failed to read pixel data: %w", err)
		}
		packet = p

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	sum := hash.Sum32()

	var checksum uint32
	if err := binary.Read(r, Endianness, &checksum); err != nil {
		return nil, fmt.Errorf("failed to read packet checksum: %w", err)
	}

	if checksum != sum {
		return nil, fmt.Errorf("packet checksum mismatch")
	}

	return packet, nil
}

// WriteHostPacket writes a host packet to the given writer.
func WriteHostPacket(w io.Writer, p HostPacket) error {
	hash := crc32.NewIEEE()
	w = io.MultiWriter(w, hash)

	if err := binary.Write(w, Endianness, p.Type()); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}

	switch p := p.(type) {
	case InitializePacket:
		if err := binary.Write(w, Endianness, p); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	case ClearPacket:
		// Type byte only.
	case FramePacket:
		if _, err := w.Write(p.Pix); err != nil {
			return fmt.Errorf("failed to write pixel data: %w", err)
		}
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	if err := binary.Write(w, Endianness, hash.Sum32()); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}

	return nil
}

// ReadDevicePacket reads a device packet from the given reader.
func ReadDevicePacket(r io.Reader, context ReadContext) (DevicePacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	var packet DevicePacket
	var ptypeBuf [1]byte
	if _, err := io.ReadFull(r, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read device packet type: %w", err)
	}

	switch ptype := DevicePacketType(ptypeBuf[0]); ptype {
	case TypeAckPacket:
		var p AckPacket
		if err := binary.Read(r, Endianness, &p.For); err != nil {
			return nil, fmt.Errorf("failed to read acked type: %w", err)
		}
		packet = p

	case TypeErrorPacket:
		msg, err := readMessage(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read error message: %w", err)
		}
		packet = ErrorPacket{Message: msg}

	case TypePanicPacket:
		packet = PanicPacket{}

	case TypeLogPacket:
		msg, err := readMessage(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read log message: %w", err)
		}
		packet = LogPacket{Message: msg}

	case TypeRemotePacket:
		var p RemotePacket
		if err := binary.Read(r, Endianness, &p.Code); err != nil {
			return nil, fmt.Errorf("failed to read remote code: %w", err)
		}
		packet = p

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	sum := hash.Sum32()

	var checksum uint32
	if err := binary.Read(r, Endianness, &checksum); err != nil {
		return nil, fmt.Errorf("failed to read packet checksum: %w", err)
	}

	if checksum != sum {
		return nil, fmt.Errorf("packet checksum mismatch")
	}

	return packet, nil
}

// WriteDevicePacket writes a device packet to the given writer.
func WriteDevicePacket(w io.Writer, p DevicePacket) error {
	hash := crc32.NewIEEE()
	w = io.MultiWriter(w, hash)

	if err := binary.Write(w, Endianness, p.Type()); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}

	switch p := p.(type) {
	case AckPacket:
		if err := binary.Write(w, Endianness, p.For); err != nil {
			return fmt.Errorf("failed to write acked type: %w", err)
		}
	case ErrorPacket:
		if err := writeMessage(w, p.Message); err != nil {
			return fmt.Errorf("failed to write error message: %w", err)
		}
	case PanicPacket:
		// Type byte only.
	case LogPacket:
		if err := writeMessage(w, p.Message); err != nil {
			return fmt.Errorf("failed to write log message: %w", err)
		}
	case RemotePacket:
		if err := binary.Write(w, Endianness, p.Code); err != nil {
			return fmt.Errorf("failed to write remote code: %w", err)
		}
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	if err := binary.Write(w, Endianness, hash.Sum32()); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}

	return nil
}

func readMessage(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, Endianness, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeMessage(w io.Writer, msg string) error {
	if err := binary.Write(w, Endianness, uint16(len(msg))); err != nil {
		return err
	}
	_, err := w.Write([]byte(msg))
	return err
}
