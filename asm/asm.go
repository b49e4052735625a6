// Package asm encodes LC-3 instruction words and builds loadable
// memory images. It is a word-level encoder, not a text assembler:
// offsets are pre-computed word deltas relative to the incremented
// PC, and register fields are masked to 3 bits.
package asm

import (
	"encoding/binary"

	"github.com/averen/lc3/vm"
)

// condition masks for Br
const (
	N = vm.Word(0b100)
	Z = vm.Word(0b010)
	P = vm.Word(0b001)
)

func enc(op vm.Opcode, rest vm.Word) vm.Word {
	return vm.Word(op)<<12 | rest
}

func reg(r vm.Word) vm.Word { return r & 0b111 }

func imm(v int, bits uint) vm.Word {
	return vm.Word(v) & (1<<bits - 1)
}

// Br branches by off words when the condition code intersects mask
// nzp. A mask of N|Z|P branches unconditionally.
func Br(nzp vm.Word, off int) vm.Word {
	return enc(vm.OP_BR, (nzp&0b111)<<9|imm(off, 9))
}

// Add encodes dr = sr1 + sr2.
func Add(dr, sr1, sr2 vm.Word) vm.Word {
	return enc(vm.OP_ADD, reg(dr)<<9|reg(sr1)<<6|reg(sr2))
}

// AddImm encodes dr = sr1 + v, with v a signed 5-bit immediate.
func AddImm(dr, sr1 vm.Word, v int) vm.Word {
	return enc(vm.OP_ADD, reg(dr)<<9|reg(sr1)<<6|1<<5|imm(v, 5))
}

// And encodes dr = sr1 & sr2.
func And(dr, sr1, sr2 vm.Word) vm.Word {
	return enc(vm.OP_AND, reg(dr)<<9|reg(sr1)<<6|reg(sr2))
}

// AndImm encodes dr = sr1 & v, with v a signed 5-bit immediate.
func AndImm(dr, sr1 vm.Word, v int) vm.Word {
	return enc(vm.OP_AND, reg(dr)<<9|reg(sr1)<<6|1<<5|imm(v, 5))
}

// Not encodes dr = ^sr.
func Not(dr, sr vm.Word) vm.Word {
	return enc(vm.OP_NOT, reg(dr)<<9|reg(sr)<<6|0b111111)
}

// Ld encodes dr = mem[PC+off].
func Ld(dr vm.Word, off int) vm.Word {
	return enc(vm.OP_LD, reg(dr)<<9|imm(off, 9))
}

// Ldi encodes dr = mem[mem[PC+off]].
func Ldi(dr vm.Word, off int) vm.Word {
	return enc(vm.OP_LDI, reg(dr)<<9|imm(off, 9))
}

// Ldr encodes dr = mem[br+off], with off a signed 6-bit offset.
func Ldr(dr, br vm.Word, off int) vm.Word {
	return enc(vm.OP_LDR, reg(dr)<<9|reg(br)<<6|imm(off, 6))
}

// Lea encodes dr = PC+off.
func Lea(dr vm.Word, off int) vm.Word {
	return enc(vm.OP_LEA, reg(dr)<<9|imm(off, 9))
}

// St encodes mem[PC+off] = sr.
func St(sr vm.Word, off int) vm.Word {
	return enc(vm.OP_ST, reg(sr)<<9|imm(off, 9))
}

// Sti encodes mem[mem[PC+off]] = sr.
func Sti(sr vm.Word, off int) vm.Word {
	return enc(vm.OP_STI, reg(sr)<<9|imm(off, 9))
}

// Str encodes mem[br+off] = sr, with off a signed 6-bit offset.
func Str(sr, br vm.Word, off int) vm.Word {
	return enc(vm.OP_STR, reg(sr)<<9|reg(br)<<6|imm(off, 6))
}

// Jmp encodes PC = br.
func Jmp(br vm.Word) vm.Word {
	return enc(vm.OP_JMP, reg(br)<<6)
}

// Ret is Jmp through R7.
func Ret() vm.Word { return Jmp(vm.R7) }

// Jsr encodes a PC-relative subroutine call with a signed 11-bit
// offset.
func Jsr(off int) vm.Word {
	return enc(vm.OP_JSR, 1<<11|imm(off, 11))
}

// Jsrr encodes a subroutine call through register br.
func Jsrr(br vm.Word) vm.Word {
	return enc(vm.OP_JSR, reg(br)<<6)
}

// Trap encodes a trap call with the given 8-bit vector.
func Trap(vector vm.Word) vm.Word {
	return enc(vm.OP_TRAP, vector&0xFF)
}

// Image assembles words into a loadable binary image: big-endian
// origin followed by big-endian program words.
func Image(origin vm.Word, words ...vm.Word) []byte {
	image := make([]byte, 2+2*len(words))
	binary.BigEndian.PutUint16(image, uint16(origin))
	for i, w := range words {
		binary.BigEndian.PutUint16(image[2+2*i:], uint16(w))
	}
	return image
}

// Stringz lays s out one character per word with a zero terminator,
// the layout PUTS expects.
func Stringz(s string) []vm.Word {
	words := make([]vm.Word, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		words = append(words, vm.Word(s[i]))
	}
	return append(words, 0)
}

// Packed lays s out two characters per word, low byte first, with a
// zero terminator, the layout PUTSP expects.
func Packed(s string) []vm.Word {
	var words []vm.Word
	for i := 0; i < len(s); i += 2 {
		w := vm.Word(s[i])
		if i+1 < len(s) {
			w |= vm.Word(s[i+1]) << 8
		}
		words = append(words, w)
	}
	return append(words, 0)
}
