package vm

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// LoadImage copies a program image into memory and points the PC at
// it. The format is a format contract shared with any compliant
// assembler: a big-endian 16-bit origin address followed by
// big-endian 16-bit program words, no header, no checksum.
//
// Images with more words than the address space fail with
// ErrImageTooLarge before anything is copied; images shorter than the
// origin word or with a trailing odd byte fail with ErrImageTruncated.
func (m *Machine) LoadImage(image []byte) error {
	if len(image) < 2 {
		return errors.Wrap(ErrImageTruncated, "load")
	}
	origin := Word(binary.BigEndian.Uint16(image))
	words := image[2:]
	if len(words)%2 != 0 {
		return errors.Wrap(ErrImageTruncated, "load")
	}
	if len(words)/2 > MemorySize {
		return errors.Wrapf(ErrImageTooLarge, "load: %d words", len(words)/2)
	}
	addr := origin
	for i := 0; i < len(words); i += 2 {
		m.Mem.cells[addr] = Word(binary.BigEndian.Uint16(words[i:]))
		addr++
	}
	m.PC = origin
	return nil
}

// LoadImageFile loads the program image stored in the named file.
func (m *Machine) LoadImageFile(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "load")
	}
	return errors.Wrap(m.LoadImage(data), name)
}
