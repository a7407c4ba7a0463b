// Package frame turns a raw duplex byte stream into a stream of
// newline-delimited UTF-8 frames, one complete protocol message per line.
package frame

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrIncompleteFrame indicates the stream ended in the middle of a frame:
// data was read after the last newline but the terminating newline never
// arrived.
var ErrIncompleteFrame = errors.New("frame: stream ended with incomplete frame")

// Reader reassembles newline-delimited frames from an io.Reader. A frame
// split across multiple underlying reads is buffered until its newline
// boundary arrives.
type Reader struct {
	br *bufio.Reader
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadFrame returns the next frame without its trailing newline. At clean
// stream end it returns io.EOF; a trailing partial line yields
// ErrIncompleteFrame instead of being silently dropped.
func (r *Reader) ReadFrame() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return "", fmt.Errorf("%w: %q", ErrIncompleteFrame, truncate(line, 64))
		}
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// Writer emits frames to an io.Writer, appending exactly one newline per
// frame.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame writes one frame followed by a newline. The frame must not
// contain a raw newline; payloads escape them at the serialization layer.
func (w *Writer) WriteFrame(frame string) error {
	if strings.ContainsRune(frame, '\n') {
		return fmt.Errorf("frame: embedded newline in frame %q", truncate(frame, 64))
	}
	buf := make([]byte, 0, len(frame)+1)
	buf = append(buf, frame...)
	buf = append(buf, '\n')
	_, err := w.w.Write(buf)
	return err
}

// Codec encodes one JSON object per newline-delimited frame. It implements
// jsonrpc2.ObjectCodec, letting the correlator read and write through the
// frame layer.
type Codec struct{}

// WriteObject marshals obj and writes it as a single frame.
func (Codec) WriteObject(stream io.Writer, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	// encoding/json escapes control characters, so data carries no raw
	// newline.
	data = append(data, '\n')
	_, err = stream.Write(data)
	return err
}

// ReadObject decodes the next frame into v.
func (Codec) ReadObject(stream *bufio.Reader, v interface{}) error {
	line, err := stream.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return fmt.Errorf("%w: %q", ErrIncompleteFrame, truncate(string(line), 64))
		}
		return err
	}
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return json.Unmarshal(line, v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
