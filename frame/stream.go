package frame

import (
	"io"

	"github.com/sourcegraph/jsonrpc2"
)

// NewStream binds a duplex byte stream into a jsonrpc2.ObjectStream using
// the newline frame codec. Closing the stream closes rwc; an EOF or error
// on the incoming side surfaces to the reader, which lets the owning
// connection tear down the other direction, so a crashed peer cannot leave
// the consuming side blocked forever.
func NewStream(rwc io.ReadWriteCloser) jsonrpc2.ObjectStream {
	return jsonrpc2.NewBufferedStream(rwc, Codec{})
}

// duplex joins an independent read and write side into one
// io.ReadWriteCloser. Close closes both sides and reports the first error.
type duplex struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (d *duplex) Read(p []byte) (int, error)  { return d.r.Read(p) }
func (d *duplex) Write(p []byte) (int, error) { return d.w.Write(p) }

func (d *duplex) Close() error {
	werr := d.w.Close()
	rerr := d.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Combine joins a read side and a write side (for example a subprocess's
// stdout and stdin) into a single duplex stream.
func Combine(r io.ReadCloser, w io.WriteCloser) io.ReadWriteCloser {
	return &duplex{r: r, w: w}
}
