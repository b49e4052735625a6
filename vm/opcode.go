package vm

import "fmt"

// Opcode is the 4-bit operation selector in bits 15:12 of an
// instruction word. The enumeration is closed: every 4-bit value has
// a case, and the two architecturally reserved slots (RTI and 0b1101)
// fault at fetch time.
type Opcode Word

const (
	OP_BR Opcode = iota
	OP_ADD
	OP_LD
	OP_ST
	OP_JSR
	OP_AND
	OP_LDR
	OP_STR
	OP_RTI
	OP_NOT
	OP_LDI
	OP_STI
	OP_JMP
	OP_RES
	OP_LEA
	OP_TRAP
)

var opcodeNames = [...]string{
	"BR",
	"ADD",
	"LD",
	"ST",
	"JSR",
	"AND",
	"LDR",
	"STR",
	"RTI",
	"NOT",
	"LDI",
	"STI",
	"JMP",
	"RES",
	"LEA",
	"TRAP",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", Word(op))
}
