package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeZapEntry(t *testing.T) {
	w := &Writer{hostname: "test-host", service: "suratdesa"}

	out, err := w.Encode([]byte(`{"level":"warn","ts":1700000000.5,"msg":"status update failed","recordId":"12"}` + "\n"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "1.1", got["version"])
	assert.Equal(t, "test-host", got["host"])
	assert.Equal(t, "status update failed", got["short_message"])
	assert.Equal(t, float64(4), got["level"])
	assert.Equal(t, 1700000000.5, got["timestamp"])
	assert.Equal(t, "12", got["_recordId"])
	assert.Equal(t, "suratdesa", got["_service"])
}

func TestEncodePlainLine(t *testing.T) {
	w := &Writer{hostname: "h", service: "suratdesa"}

	out, err := w.Encode([]byte("not json\n"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "not json", got["short_message"])
	assert.Equal(t, float64(6), got["level"])
}

func TestWriteSendsDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	w, err := New(pc.LocalAddr().String(), "suratdesa")
	require.NoError(t, err)
	defer w.Close()

	n, err := w.Write([]byte(`{"level":"error","msg":"boom"}`))
	require.NoError(t, err)
	assert.Equal(t, len(`{"level":"error","msg":"boom"}`), n)

	buf := make([]byte, 2048)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	m, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf[:m], &got))
	assert.Equal(t, "boom", got["short_message"])
	assert.Equal(t, float64(3), got["level"])
}
