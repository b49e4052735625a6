package vm

// MemorySize is the number of words in the address space. Addresses
// are 16-bit, so wraparound is implicit.
const MemorySize = 1 << 16

// address space layout
const (
	TrapVectorTableStart       = 0x0000
	InterruptVectorTableStart  = 0x0100
	SystemSpaceStart           = 0x0200
	UserSpaceStart             = 0x3000
	MemoryMappedRegistersStart = 0xFE00
)

// memory mapped device registers
const (
	KBSR Word = MemoryMappedRegistersStart          // keyboard status
	KBDR Word = MemoryMappedRegistersStart + 0x0002 // keyboard data
	DSR  Word = MemoryMappedRegistersStart + 0x0004 // display status
	DDR  Word = MemoryMappedRegistersStart + 0x0006 // display data
)

// deviceReady is the ready bit of the status registers.
const deviceReady Word = 1 << 15

// Memory is the machine address space. The device registers are
// decoded before the backing store, so reads and writes to them never
// touch the underlying cells.
type Memory struct {
	cells [MemorySize]Word
	keys  Keyboard
	disp  Display
}

// Read returns the word at addr. KBSR reads the keyboard ready bit,
// KBDR consumes one pending byte when the keyboard is ready and reads
// as 0 otherwise, DSR always reads ready and DDR (write-only) reads
// as 0.
func (m *Memory) Read(addr Word) Word {
	switch addr {
	case KBSR:
		if m.pollKey() {
			return deviceReady
		}
		return 0
	case KBDR:
		if m.pollKey() {
			return Word(m.readKey())
		}
		return 0
	case DSR:
		return deviceReady
	case DDR:
		return 0
	}
	return m.cells[addr]
}

// Write stores v at addr. The status registers and KBDR ignore
// writes; DDR sends the low byte to the display and flushes
// immediately.
func (m *Memory) Write(addr, v Word) {
	switch addr {
	case KBSR, KBDR, DSR:
		return
	case DDR:
		m.putByte(byte(v))
		m.flush()
		return
	}
	m.cells[addr] = v
}

func (m *Memory) pollKey() bool {
	return m.keys != nil && m.keys.Poll()
}

// readKey blocks for one byte. A missing keyboard or a failed read
// yields 0, keeping the machine deterministic when input dries up.
func (m *Memory) readKey() byte {
	if m.keys == nil {
		return 0
	}
	b, err := m.keys.ReadByte()
	if err != nil {
		return 0
	}
	return b
}

func (m *Memory) putByte(c byte) {
	if m.disp != nil {
		_ = m.disp.WriteByte(c)
	}
}

func (m *Memory) flush() {
	if m.disp != nil {
		_ = m.disp.Flush()
	}
}
