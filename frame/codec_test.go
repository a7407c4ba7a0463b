package frame_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewire/mcpconn/frame"
)

func TestRoundTrip(t *testing.T) {
	messages := []string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		"plain text frame",
		"",
		`{"jsonrpc":"2.0","id":2,"result":{}}`,
	}
	var buf bytes.Buffer
	writer := frame.NewWriter(&buf)
	for _, message := range messages {
		require.NoError(t, writer.WriteFrame(message))
	}

	reader := frame.NewReader(&buf)
	for _, expect := range messages {
		actual, err := reader.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, expect, actual)
	}
	_, err := reader.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

// chunkReader yields one byte per Read to force frames across read
// boundaries.
type chunkReader struct {
	data []byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestSplitFrameReassembled(t *testing.T) {
	reader := frame.NewReader(&chunkReader{data: []byte("first frame\nsecond frame\n")})
	first, err := reader.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "first frame", first)
	second, err := reader.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "second frame", second)
}

func TestIncompleteTrailingFrame(t *testing.T) {
	reader := frame.NewReader(strings.NewReader("complete\nincomplete"))
	_, err := reader.ReadFrame()
	require.NoError(t, err)
	_, err = reader.ReadFrame()
	assert.True(t, errors.Is(err, frame.ErrIncompleteFrame))
}

func TestWriterRejectsEmbeddedNewline(t *testing.T) {
	writer := frame.NewWriter(&bytes.Buffer{})
	assert.Error(t, writer.WriteFrame("two\nlines"))
}

func TestCodecObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	codec := frame.Codec{}
	require.NoError(t, codec.WriteObject(&buf, map[string]string{"method": "ping"}))
	require.NoError(t, codec.WriteObject(&buf, map[string]string{"method": "pong"}))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	br := bufio.NewReader(&buf)
	var first, second map[string]string
	require.NoError(t, codec.ReadObject(br, &first))
	require.NoError(t, codec.ReadObject(br, &second))
	assert.Equal(t, "ping", first["method"])
	assert.Equal(t, "pong", second["method"])
}

func TestCodecIncompleteObject(t *testing.T) {
	br := bufio.NewReader(strings.NewReader(`{"method":"ping"`))
	var v map[string]string
	err := frame.Codec{}.ReadObject(br, &v)
	assert.True(t, errors.Is(err, frame.ErrIncompleteFrame))
}
