package vm_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averen/lc3/asm"
	"github.com/averen/lc3/vm"
)

// keys is a deterministic Keyboard fed from a fixed byte string.
type keys struct {
	data []byte
}

func (k *keys) Poll() bool { return len(k.data) > 0 }

func (k *keys) ReadByte() (byte, error) {
	if len(k.data) == 0 {
		return 0, io.EOF
	}
	b := k.data[0]
	k.data = k.data[1:]
	return b, nil
}

// display records written bytes and counts flushes.
type display struct {
	bytes.Buffer
	flushes int
}

func (d *display) Flush() error { d.flushes++; return nil }

// newMachine loads words at 0x3000 on a machine wired to a scripted
// keyboard and a recording display.
func newMachine(t *testing.T, input string, words ...vm.Word) (*vm.Machine, *display) {
	t.Helper()
	d := &display{}
	m, err := vm.New(
		vm.WithKeyboard(&keys{data: []byte(input)}),
		vm.WithDisplay(d),
	)
	require.NoError(t, err)
	require.NoError(t, m.LoadImage(asm.Image(0x3000, words...)))
	return m, d
}

func TestHaltScenario(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.AddImm(vm.R0, vm.R0, 5),
		asm.AddImm(vm.R1, vm.R0, -3),
		asm.Trap(vm.TRAP_HALT),
	)

	steps := 0
	for !m.Halted() {
		require.NoError(t, m.Step())
		steps++
	}

	assert.Equal(4, steps)
	assert.Equal(vm.Word(5), m.Reg[vm.R0])
	assert.Equal(vm.Word(2), m.Reg[vm.R1])
	assert.Equal(vm.FLAG_POS, m.Cond)
	assert.True(m.Halted())
}

func TestAddRegisterMode(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.AddImm(vm.R0, vm.R0, 7),
		asm.AndImm(vm.R1, vm.R1, 0),
		asm.AddImm(vm.R1, vm.R1, -2),
		asm.Add(vm.R2, vm.R0, vm.R1),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(5), m.Reg[vm.R2])
	assert.Equal(vm.FLAG_POS, m.Cond)
}

func TestAddWraparound(t *testing.T) {
	assert := assert.New(t)

	// -16 on a zeroed register wraps to 0xFFF0
	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.AddImm(vm.R0, vm.R0, -16),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(0xFFF0), m.Reg[vm.R0])
	assert.Equal(vm.FLAG_NEG, m.Cond)
}

func TestAndModes(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.AddImm(vm.R0, vm.R0, 10),
		asm.AndImm(vm.R1, vm.R0, 6),
		asm.AndImm(vm.R2, vm.R2, 0),
		asm.AddImm(vm.R2, vm.R2, 12),
		asm.And(vm.R3, vm.R0, vm.R2),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(2), m.Reg[vm.R1])
	assert.Equal(vm.Word(8), m.Reg[vm.R3])
}

func TestNot(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.AddImm(vm.R0, vm.R0, 5),
		asm.Not(vm.R1, vm.R0),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(0xFFFA), m.Reg[vm.R1])
	assert.Equal(vm.FLAG_NEG, m.Cond)
}

func TestBranch(t *testing.T) {
	assert := assert.New(t)

	// taken: the zero condition holds after clearing R0
	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.Br(asm.Z, 1),
		asm.AddImm(vm.R0, vm.R0, 1),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())
	assert.Equal(vm.Word(0), m.Reg[vm.R0])

	// not taken: the negative condition does not hold
	m, _ = newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.Br(asm.N, 1),
		asm.AddImm(vm.R0, vm.R0, 1),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())
	assert.Equal(vm.Word(1), m.Reg[vm.R0])
}

func TestConditionCodes(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name string
		imm  int
		want vm.Flag
	}{
		{"zero", 0, vm.FLAG_ZRO},
		{"positive", 1, vm.FLAG_POS},
		{"negative", -1, vm.FLAG_NEG},
	}

	for _, test := range tests {
		m, _ := newMachine(t, "",
			asm.AndImm(vm.R0, vm.R0, 0),
			asm.AddImm(vm.R0, vm.R0, test.imm),
			asm.Trap(vm.TRAP_HALT),
		)
		require.NoError(t, m.Run())
		assert.Equal(test.want, m.Cond, test.name)
	}
}

func TestLoadStore(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),
		asm.AddImm(vm.R0, vm.R0, 9),
		asm.St(vm.R0, 5),
		asm.Ld(vm.R1, 4),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(9), m.Reg[vm.R1])
	assert.Equal(vm.Word(9), m.Mem.Read(0x3008))
	assert.Equal(vm.FLAG_POS, m.Cond)
}

func TestLoadStoreIndirect(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0), // 0x3000
		asm.AddImm(vm.R0, vm.R0, 3), // 0x3001
		asm.Sti(vm.R0, 2),           // 0x3002: through pointer at 0x3005
		asm.Ldi(vm.R1, 1),           // 0x3003: through the same pointer
		asm.Trap(vm.TRAP_HALT),      // 0x3004
		0x4000,                      // 0x3005: pointer
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(3), m.Mem.Read(0x4000))
	assert.Equal(vm.Word(3), m.Reg[vm.R1])
}

func TestLoadStoreRegister(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.AndImm(vm.R0, vm.R0, 0),  // 0x3000
		asm.AddImm(vm.R0, vm.R0, 11), // 0x3001
		asm.Lea(vm.R2, 10),           // 0x3002: base = 0x300D
		asm.Str(vm.R0, vm.R2, 3),     // 0x3003: mem[0x3010] = 11
		asm.Ldr(vm.R3, vm.R2, 3),     // 0x3004
		asm.Trap(vm.TRAP_HALT),       // 0x3005
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(0x300D), m.Reg[vm.R2])
	assert.Equal(vm.Word(11), m.Mem.Read(0x3010))
	assert.Equal(vm.Word(11), m.Reg[vm.R3])
}

func TestLea(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.Lea(vm.R0, 2),
		asm.Trap(vm.TRAP_HALT),
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(0x3003), m.Reg[vm.R0])
	assert.Equal(vm.FLAG_POS, m.Cond)
}

func TestJsr(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.Jsr(1),             // 0x3000: to 0x3002
		asm.Trap(vm.TRAP_HALT), // 0x3001: skipped
		asm.Trap(vm.TRAP_HALT), // 0x3002
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(0x3001), m.Reg[vm.R7])
}

func TestJsrr(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.Lea(vm.R1, 2),      // 0x3000: R1 = 0x3003
		asm.Jsrr(vm.R1),        // 0x3001
		asm.Br(0, 0),           // 0x3002: never executed
		asm.Trap(vm.TRAP_HALT), // 0x3003
	)
	require.NoError(t, m.Run())

	assert.Equal(vm.Word(0x3002), m.Reg[vm.R7])
}

func TestJmp(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "",
		asm.Lea(vm.R1, 2),      // 0x3000: R1 = 0x3003
		asm.Jmp(vm.R1),         // 0x3001
		asm.Br(0, 0),           // 0x3002: never executed
		asm.Trap(vm.TRAP_HALT), // 0x3003
	)
	require.NoError(t, m.Run())

	assert.True(m.Halted())
	assert.Equal(vm.Word(0), m.Reg[vm.R7]) // JMP does not link
}

func TestInvalidOpcode(t *testing.T) {
	assert := assert.New(t)

	for _, instr := range []vm.Word{0x8000, 0xD000} { // RTI, reserved
		m, _ := newMachine(t, "", instr)
		err := m.Run()
		assert.Error(err)

		var fault vm.ErrOpcode
		assert.ErrorAs(err, &fault)
		assert.Contains(err.Error(), "pc 0x3000")
		assert.False(m.Halted())
	}
}

func TestInvalidTrap(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "", asm.Trap(0x7F))
	err := m.Run()
	assert.Error(err)

	var fault vm.ErrTrap
	assert.ErrorAs(err, &fault)
	assert.Equal(vm.ErrTrap(0x7F), fault)
	assert.False(m.Halted())
}

func TestStepAfterHalt(t *testing.T) {
	assert := assert.New(t)

	m, _ := newMachine(t, "", asm.Trap(vm.TRAP_HALT))
	require.NoError(t, m.Run())

	pc := m.PC
	require.NoError(t, m.Step())
	assert.Equal(pc, m.PC)
}
