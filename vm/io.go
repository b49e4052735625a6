package vm

import (
	"io"
)

// Keyboard is the input device behind the memory-mapped keyboard
// registers and the GETC/IN traps. Poll must answer without blocking;
// ReadByte blocks until a byte is available.
type Keyboard interface {
	Poll() bool
	ReadByte() (byte, error)
}

// Display is the output device behind the memory-mapped display
// registers and the OUT/PUTS/IN/PUTSP traps. *bufio.Writer satisfies
// it.
type Display interface {
	io.ByteWriter
	Flush() error
}

// Keys adapts an io.Reader into a Keyboard by pumping it through a
// one-byte buffer from a goroutine, so Poll can answer without
// blocking on the reader. Once the reader errors or hits EOF the
// buffer is closed and further reads yield io.EOF.
type Keys struct {
	buf chan byte
}

// NewKeys starts reading from r in the background. r should already
// deliver raw, unechoed single bytes when it is a terminal.
func NewKeys(r io.Reader) *Keys {
	k := &Keys{buf: make(chan byte, 1)}
	go k.pump(r)
	return k
}

func (k *Keys) pump(r io.Reader) {
	defer close(k.buf)
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			k.buf <- buf[0]
		}
		if err != nil {
			return
		}
	}
}

// Poll reports whether ReadByte would return without blocking.
func (k *Keys) Poll() bool { return len(k.buf) > 0 }

// ReadByte blocks until a key arrives.
func (k *Keys) ReadByte() (byte, error) {
	b, ok := <-k.buf
	if !ok {
		return 0, io.EOF
	}
	return b, nil
}
