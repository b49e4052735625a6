package vm

// trap vectors
const (
	TRAP_GETC  Word = 0x20 // read one byte into R0, no echo
	TRAP_OUT   Word = 0x21 // write the low byte of R0
	TRAP_PUTS  Word = 0x22 // write the zero-terminated word string at R0
	TRAP_IN    Word = 0x23 // prompt, read one byte into R0, echo it
	TRAP_PUTSP Word = 0x24 // write the packed byte string at R0
	TRAP_HALT  Word = 0x25 // stop the machine
)

const inPrompt = "Enter a character: "

// trap dispatches the six built-in system routines. R7 already holds
// the return address when this is called.
func (m *Machine) trap(vector Word) error {
	switch vector {
	case TRAP_GETC:
		m.Reg[R0] = Word(m.Mem.readKey())
		m.setCC(R0)

	case TRAP_OUT:
		m.Mem.putByte(byte(m.Reg[R0]))
		m.Mem.flush()

	case TRAP_PUTS:
		for addr := m.Reg[R0]; ; addr++ {
			w := m.Mem.Read(addr)
			if w == 0 {
				break
			}
			m.Mem.putByte(byte(w))
		}
		m.Mem.flush()

	case TRAP_IN:
		for i := 0; i < len(inPrompt); i++ {
			m.Mem.putByte(inPrompt[i])
		}
		m.Mem.flush()
		c := m.Mem.readKey()
		m.Mem.putByte(c)
		m.Mem.flush()
		m.Reg[R0] = Word(c)
		m.setCC(R0)

	case TRAP_PUTSP:
		// two characters per word, low byte first; a zero low byte
		// terminates the string
		for addr := m.Reg[R0]; ; addr++ {
			w := m.Mem.Read(addr)
			if byte(w) == 0 {
				break
			}
			m.Mem.putByte(byte(w))
			if hi := byte(w >> 8); hi != 0 {
				m.Mem.putByte(hi)
			}
		}
		m.Mem.flush()

	case TRAP_HALT:
		m.halted = true

	default:
		return ErrTrap(vector)
	}
	return nil
}
