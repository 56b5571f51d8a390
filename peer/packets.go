package peer

import (
	"bytes"
	"fmt"
	"math"

	crunch "github.com/superwhiskers/crunch/v3"
)

//PacketType is the type of a decoded message
type PacketType byte

const (
	PacketTypeHello    PacketType = iota //"hello\0", sent while joining
	PacketTypeBye                        //"bye\0", sent once when leaving
	PacketTypeAxisX                      //"x\0" followed by a float32 datagram
	PacketTypeAxisY                      //"y\0" followed by a float32 datagram
	PacketTypeAxisZ                      //"z\0" followed by a float32 datagram
	PacketTypeControls                   //"k\0" followed by a single byte datagram
)

const (
	floatSize    = 4 //Size of a float payload datagram
	controlsSize = 1 //Size of a controls payload datagram
)

var packetTags = map[PacketType]string{
	PacketTypeHello:    "hello",
	PacketTypeBye:      "bye",
	PacketTypeAxisX:    "x",
	PacketTypeAxisY:    "y",
	PacketTypeAxisZ:    "z",
	PacketTypeControls: "k",
}

func (t PacketType) String() string {
	switch t {
	case PacketTypeHello:
		return "hello"
	case PacketTypeBye:
		return "bye"
	case PacketTypeAxisX:
		return "axisX"
	case PacketTypeAxisY:
		return "axisY"
	case PacketTypeAxisZ:
		return "axisZ"
	case PacketTypeControls:
		return "controls"
	}

	return fmt.Sprintf("unknown(%d)", byte(t))
}

//Axis returns the axis letter carried by an axis packet type, or 0
func (t PacketType) Axis() byte {
	switch t {
	case PacketTypeAxisX:
		return 'x'
	case PacketTypeAxisY:
		return 'y'
	case PacketTypeAxisZ:
		return 'z'
	}
	return 0
}

//payloadSize returns the size of the datagram that must follow a tag of this type, 0 if none follows
func (t PacketType) payloadSize() int {
	switch t {
	case PacketTypeAxisX, PacketTypeAxisY, PacketTypeAxisZ:
		return floatSize
	case PacketTypeControls:
		return controlsSize
	}
	return 0
}

//Message holds a decoded message from the other peer
type Message struct {
	Type     PacketType
	Value    float32 //The coordinate of an axis message
	Controls byte    //The packed key state of a controls message
}

func (m Message) String() string {
	switch {
	case m.Type.Axis() != 0:
		return fmt.Sprintf("%s=%v", m.Type, m.Value)
	case m.Type == PacketTypeControls:
		return fmt.Sprintf("%s=%04b", m.Type, m.Controls)
	}
	return m.Type.String()
}

type packet struct {
	*crunch.Buffer //Holds the datagram and provides additional methods to directly read and write on it
}

func newPacket() *packet {
	return &packet{crunch.NewBuffer(make([]byte, 0))}
}

//newTagPacket returns the NUL-terminated tag datagram of a packet type
func newTagPacket(packetType PacketType) *packet {
	tag := []byte(packetTags[packetType])
	pk := newPacket()
	pk.Grow(int64(len(tag) + 1))
	pk.WriteBytesNext(tag)
	pk.WriteByteNext(0)
	return pk
}

//newFloatPacket returns a little-endian float32 payload datagram
func newFloatPacket(value float32) *packet {
	pk := newPacket()
	pk.Grow(floatSize)
	pk.WriteF32LENext([]float32{value})
	return pk
}

//newControlsPacket returns a single byte controls payload datagram
func newControlsPacket(bits byte) *packet {
	pk := newPacket()
	pk.Grow(controlsSize)
	pk.WriteByteNext(bits)
	return pk
}

//AsBytes returns the raw datagram
func (p *packet) AsBytes() []byte {
	return p.Bytes()
}

//EncodeAxis returns the two datagrams announcing and carrying one coordinate
func EncodeAxis(packetType PacketType, value float32) ([][]byte, error) {
	if packetType.Axis() == 0 {
		return nil, fmt.Errorf("packet type %s is not an axis", packetType)
	}
	return [][]byte{newTagPacket(packetType).AsBytes(), newFloatPacket(value).AsBytes()}, nil
}

//EncodeControls returns the two datagrams announcing and carrying a key state
func EncodeControls(bits byte) [][]byte {
	return [][]byte{newTagPacket(PacketTypeControls).AsBytes(), newControlsPacket(bits).AsBytes()}
}

//EncodeHello returns the hello datagram
func EncodeHello() []byte {
	return newTagPacket(PacketTypeHello).AsBytes()
}

//EncodeBye returns the bye datagram
func EncodeBye() []byte {
	return newTagPacket(PacketTypeBye).AsBytes()
}

//cString returns data up to its first NUL byte
func cString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return string(data[:i])
	}
	return string(data)
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

//IsHello returns true if a datagram reads as the hello string
func IsHello(data []byte) bool {
	return cString(data) == packetTags[PacketTypeHello]
}

//Decoder pairs tag datagrams with the payload datagram that follows them
type Decoder struct {
	pending PacketType //The tag waiting for its payload
	waiting bool       //If a tag is waiting for its payload
}

//Pending returns the tag currently waiting for its payload
func (d *Decoder) Pending() (PacketType, bool) {
	return d.pending, d.waiting
}

//Reset forgets any pending tag
func (d *Decoder) Reset() {
	d.waiting = false
}

//Feed decodes a single datagram. ok is false when the datagram completes no message;
//dropped is true when the datagram was not understood and thrown away.
func (d *Decoder) Feed(data []byte) (msg Message, ok, dropped bool) {
	if d.waiting && len(data) == d.pending.payloadSize() {
		msg.Type = d.pending
		d.Reset()

		buf := crunch.NewBuffer(data)
		switch msg.Type {
		case PacketTypeControls:
			msg.Controls = buf.ReadByteNext()
		default:
			msg.Value = buf.ReadF32LENext(1)[0]
			//NaN and infinities would push the NPC out of the lane for good
			if !finite(msg.Value) {
				return Message{}, false, true
			}
		}
		return msg, true, false
	}

	d.Reset()
	switch cString(data) {
	case packetTags[PacketTypeHello]:
		return Message{Type: PacketTypeHello}, true, false
	case packetTags[PacketTypeBye]:
		return Message{Type: PacketTypeBye}, true, false
	case packetTags[PacketTypeAxisX]:
		d.pending, d.waiting = PacketTypeAxisX, true
	case packetTags[PacketTypeAxisY]:
		d.pending, d.waiting = PacketTypeAxisY, true
	case packetTags[PacketTypeAxisZ]:
		d.pending, d.waiting = PacketTypeAxisZ, true
	case packetTags[PacketTypeControls]:
		d.pending, d.waiting = PacketTypeControls, true
	default:
		return Message{}, false, true
	}
	return Message{}, false, false
}
