package ledserial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramePacketRoundTrip(t *testing.T) {
	pix := make([]uint8, 3*4)
	for i := range pix {
		pix[i] = uint8(i * 17)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHostPacket(&buf, FramePacket{Pix: pix}))

	p, err := ReadHostPacket(&buf, ReadContext{NumLEDs: 4})
	require.NoError(t, err)

	frame, ok := p.(FramePacket)
	require.True(t, ok, "expected FramePacket, got %T", p)
	assert.Equal(t, pix, frame.Pix)
}

func TestRemotePacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDevicePacket(&buf, RemotePacket{Code: 0xFF30CF}))

	p, err := ReadDevicePacket(&buf, ReadContext{})
	require.NoError(t, err)

	remote, ok := p.(RemotePacket)
	require.True(t, ok, "expected RemotePacket, got %T", p)
	assert.Equal(t, uint32(0xFF30CF), remote.Code)
}

func TestAckPacketRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDevicePacket(&buf, AckPacket{For: TypeFramePacket}))

	p, err := ReadDevicePacket(&buf, ReadContext{})
	require.NoError(t, err)
	assert.Equal(t, AckPacket{For: TypeFramePacket}, p)
}

func TestCorruptedChecksumRejected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDevicePacket(&buf, LogPacket{Message: "hello"}))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, err := ReadDevicePacket(bytes.NewReader(raw), ReadContext{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum")
}
