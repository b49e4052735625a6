package vm

import (
	"log"

	"github.com/pkg/errors"
)

// Word is the machine word: the sole unit of storage, arithmetic and
// instruction encoding. All arithmetic wraps modulo 2^16.
type Word uint16

// Flag is the condition code. Exactly one flag is set after every
// register-writing instruction.
type Flag Word

const (
	FLAG_POS Flag = 1 << 0
	FLAG_ZRO Flag = 1 << 1
	FLAG_NEG Flag = 1 << 2
)

// general purpose registers
const (
	R0 = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7 // return address after JSR/JSRR and TRAP
)

// Machine is a single LC-3 machine instance. The register file and
// address space are owned by the machine for the whole run; nothing
// mutates them concurrently.
type Machine struct {
	Trace bool // log every fetched instruction

	PC   Word
	Reg  [8]Word
	Cond Flag
	Mem  *Memory

	halted bool
}

// Option configures a Machine.
type Option func(*Machine) error

// WithPC sets the initial program counter. Loading an image
// afterwards overrides it with the image origin.
func WithPC(pc Word) Option {
	return func(m *Machine) error { m.PC = pc; return nil }
}

// WithCond sets the initial condition code.
func WithCond(f Flag) Option {
	return func(m *Machine) error { m.Cond = f; return nil }
}

// WithKeyboard attaches the input device backing the memory-mapped
// keyboard registers and the GETC/IN traps. Without one, keyboard
// reads yield 0.
func WithKeyboard(k Keyboard) Option {
	return func(m *Machine) error { m.Mem.keys = k; return nil }
}

// WithDisplay attaches the output device backing the memory-mapped
// display registers and the OUT/PUTS/IN/PUTSP traps. Without one,
// display writes are dropped.
func WithDisplay(d Display) Option {
	return func(m *Machine) error { m.Mem.disp = d; return nil }
}

// New creates a machine with zeroed registers and memory, PC at the
// start of user space and the condition code at zero.
func New(opts ...Option) (*Machine, error) {
	m := &Machine{
		PC:   UserSpaceStart,
		Cond: FLAG_ZRO,
		Mem:  &Memory{},
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Halted reports whether a HALT trap stopped the machine.
func (m *Machine) Halted() bool { return m.halted }

// Run executes instructions until the machine halts or faults. On a
// fault the returned error names the offending opcode or trap vector
// and the PC it was fetched from; no instruction after the fault has
// executed.
func (m *Machine) Run() error {
	for !m.halted {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step fetches, decodes and executes a single instruction. Stepping a
// halted machine is a no-op.
func (m *Machine) Step() error {
	if m.halted {
		return nil
	}
	pc := m.PC
	instr := m.Mem.Read(pc)
	m.PC++
	if m.Trace {
		log.Printf("0x%04x %v 0x%04x", pc, Opcode(instr>>12), instr)
	}
	if err := m.execute(instr); err != nil {
		return errors.Wrapf(err, "pc 0x%04x", pc)
	}
	return nil
}

func (m *Machine) execute(instr Word) error {
	switch op := Opcode(instr >> 12); op {
	case OP_BR:
		nzp := Flag(instr >> 9 & 0b111)
		if nzp&m.Cond != 0 {
			m.PC += sext(instr, 9)
		}

	case OP_ADD:
		dr := instr >> 9 & 0b111
		sr1 := instr >> 6 & 0b111
		if instr&(1<<5) != 0 {
			m.Reg[dr] = m.Reg[sr1] + sext(instr, 5)
		} else {
			m.Reg[dr] = m.Reg[sr1] + m.Reg[instr&0b111]
		}
		m.setCC(dr)

	case OP_AND:
		dr := instr >> 9 & 0b111
		sr1 := instr >> 6 & 0b111
		if instr&(1<<5) != 0 {
			m.Reg[dr] = m.Reg[sr1] & sext(instr, 5)
		} else {
			m.Reg[dr] = m.Reg[sr1] & m.Reg[instr&0b111]
		}
		m.setCC(dr)

	case OP_NOT:
		dr := instr >> 9 & 0b111
		m.Reg[dr] = ^m.Reg[instr>>6&0b111]
		m.setCC(dr)

	case OP_LD:
		dr := instr >> 9 & 0b111
		m.Reg[dr] = m.Mem.Read(m.PC + sext(instr, 9))
		m.setCC(dr)

	case OP_LDI:
		dr := instr >> 9 & 0b111
		m.Reg[dr] = m.Mem.Read(m.Mem.Read(m.PC + sext(instr, 9)))
		m.setCC(dr)

	case OP_LDR:
		dr := instr >> 9 & 0b111
		br := instr >> 6 & 0b111
		m.Reg[dr] = m.Mem.Read(m.Reg[br] + sext(instr, 6))
		m.setCC(dr)

	case OP_LEA:
		dr := instr >> 9 & 0b111
		m.Reg[dr] = m.PC + sext(instr, 9)
		m.setCC(dr)

	case OP_ST:
		m.Mem.Write(m.PC+sext(instr, 9), m.Reg[instr>>9&0b111])

	case OP_STI:
		m.Mem.Write(m.Mem.Read(m.PC+sext(instr, 9)), m.Reg[instr>>9&0b111])

	case OP_STR:
		br := instr >> 6 & 0b111
		m.Mem.Write(m.Reg[br]+sext(instr, 6), m.Reg[instr>>9&0b111])

	case OP_JMP:
		m.PC = m.Reg[instr>>6&0b111]

	case OP_JSR:
		ret := m.PC
		if instr&(1<<11) != 0 {
			m.PC += sext(instr, 11)
		} else {
			m.PC = m.Reg[instr>>6&0b111]
		}
		m.Reg[R7] = ret

	case OP_TRAP:
		m.Reg[R7] = m.PC
		return m.trap(instr & 0xFF)

	default: // OP_RTI, OP_RES
		return ErrOpcode(op)
	}
	return nil
}

// setCC sets the condition code from the value just written to
// register r: zero, negative if bit 15 is set, positive otherwise.
func (m *Machine) setCC(r Word) {
	switch v := m.Reg[r]; {
	case v == 0:
		m.Cond = FLAG_ZRO
	case v>>15 != 0:
		m.Cond = FLAG_NEG
	default:
		m.Cond = FLAG_POS
	}
}

// sext masks x to its low bits and sign extends the result: bit
// bits-1 is replicated into the high bits of the word.
func sext(x Word, bits uint) Word {
	x &= 1<<bits - 1
	if x&(1<<(bits-1)) != 0 {
		x |= 0xFFFF << bits
	}
	return x
}
