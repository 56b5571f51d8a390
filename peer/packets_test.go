package peer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHelloIsNulTerminated(t *testing.T) {
	assert.Equal(t, []byte("hello\x00"), EncodeHello())
	assert.Equal(t, []byte("bye\x00"), EncodeBye())
}

func TestEncodeAxisWireFormat(t *testing.T) {
	datagrams, err := EncodeAxis(PacketTypeAxisY, -2.5)
	require.NoError(t, err)
	require.Len(t, datagrams, 2)

	assert.Equal(t, []byte("y\x00"), datagrams[0])
	require.Len(t, datagrams[1], 4)
	assert.Equal(t, float32(-2.5), math.Float32frombits(binary.LittleEndian.Uint32(datagrams[1])))
}

func TestEncodeAxisRejectsOtherTypes(t *testing.T) {
	_, err := EncodeAxis(PacketTypeHello, 1)
	assert.Error(t, err)
}

func TestEncodeControlsWireFormat(t *testing.T) {
	datagrams := EncodeControls(0b0101)
	require.Len(t, datagrams, 2)
	assert.Equal(t, []byte("k\x00"), datagrams[0])
	assert.Equal(t, []byte{0b0101}, datagrams[1])
}

func TestDecoderPairsTagWithPayload(t *testing.T) {
	var d Decoder
	for _, c := range []struct {
		axis  PacketType
		value float32
	}{
		{PacketTypeAxisX, 0.75},
		{PacketTypeAxisY, 4},
		{PacketTypeAxisZ, -1e-3},
	} {
		datagrams, err := EncodeAxis(c.axis, c.value)
		require.NoError(t, err)

		_, ok, dropped := d.Feed(datagrams[0])
		require.False(t, ok)
		require.False(t, dropped)
		pending, waiting := d.Pending()
		require.True(t, waiting)
		require.Equal(t, c.axis, pending)

		msg, ok, dropped := d.Feed(datagrams[1])
		require.True(t, ok)
		require.False(t, dropped)
		assert.Equal(t, c.axis, msg.Type)
		assert.Equal(t, c.value, msg.Value)

		_, waiting = d.Pending()
		assert.False(t, waiting)
	}
}

func TestDecoderControls(t *testing.T) {
	var d Decoder
	datagrams := EncodeControls(0b1010)
	d.Feed(datagrams[0])
	msg, ok, _ := d.Feed(datagrams[1])
	require.True(t, ok)
	assert.Equal(t, PacketTypeControls, msg.Type)
	assert.Equal(t, byte(0b1010), msg.Controls)
}

func TestDecoderHelloAndBye(t *testing.T) {
	var d Decoder
	msg, ok, _ := d.Feed(EncodeHello())
	require.True(t, ok)
	assert.Equal(t, PacketTypeHello, msg.Type)

	//Trailing garbage after the NUL does not matter, as with the C string comparison
	msg, ok, _ = d.Feed([]byte("hello\x00junk"))
	require.True(t, ok)
	assert.Equal(t, PacketTypeHello, msg.Type)

	msg, ok, _ = d.Feed(EncodeBye())
	require.True(t, ok)
	assert.Equal(t, PacketTypeBye, msg.Type)
}

func TestDecoderDropsPayloadWithoutTag(t *testing.T) {
	var d Decoder
	_, ok, dropped := d.Feed([]byte{0, 0, 0x80, 0x3f})
	assert.False(t, ok)
	assert.True(t, dropped)
}

func TestDecoderTagFollowedByTagForgetsFirst(t *testing.T) {
	var d Decoder
	d.Feed([]byte("x\x00"))
	d.Feed([]byte("z\x00"))

	datagrams, err := EncodeAxis(PacketTypeAxisZ, 3)
	require.NoError(t, err)
	msg, ok, _ := d.Feed(datagrams[1])
	require.True(t, ok)
	assert.Equal(t, PacketTypeAxisZ, msg.Type)
	assert.Equal(t, float32(3), msg.Value)
}

func TestDecoderWrongSizedPayloadDropsTag(t *testing.T) {
	var d Decoder
	d.Feed([]byte("x\x00"))

	_, ok, dropped := d.Feed([]byte{1, 2, 3})
	assert.False(t, ok)
	assert.True(t, dropped)

	_, waiting := d.Pending()
	assert.False(t, waiting)
}

func TestDecoderDropsNonFiniteCoordinates(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		var d Decoder
		datagrams, err := EncodeAxis(PacketTypeAxisX, float32(v))
		require.NoError(t, err)

		_, ok, dropped := d.Feed(datagrams[0])
		require.False(t, ok)
		require.False(t, dropped)

		_, ok, dropped = d.Feed(datagrams[1])
		assert.False(t, ok, "%v", v)
		assert.True(t, dropped, "%v", v)
		_, waiting := d.Pending()
		assert.False(t, waiting)
	}
}

func TestDecoderUnknownStringDropped(t *testing.T) {
	var d Decoder
	_, ok, dropped := d.Feed([]byte("howdy\x00"))
	assert.False(t, ok)
	assert.True(t, dropped)
}

func TestPacketTypeStrings(t *testing.T) {
	assert.Equal(t, "axisX", PacketTypeAxisX.String())
	assert.Equal(t, "unknown(200)", PacketType(200).String())
	assert.Equal(t, byte('y'), PacketTypeAxisY.Axis())
	assert.Zero(t, PacketTypeHello.Axis())
	assert.Equal(t, "axisZ=1.5", Message{Type: PacketTypeAxisZ, Value: 1.5}.String())
}
