package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// image loader errors
var (
	ErrImageTooLarge  = errors.New("image exceeds address space")
	ErrImageTruncated = errors.New("image truncated")
)

// ErrOpcode is the fatal fault raised when an architecturally
// reserved or unimplemented opcode is fetched.
type ErrOpcode Opcode

func (e ErrOpcode) Error() string {
	return fmt.Sprintf("invalid opcode %v (0b%04b)", Opcode(e), Word(e))
}

// ErrTrap is the fatal fault raised when a TRAP instruction carries
// an unrecognized vector.
type ErrTrap Word

func (e ErrTrap) Error() string {
	return fmt.Sprintf("invalid trap vector 0x%02x", Word(e))
}
