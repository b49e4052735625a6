// Package vm implements an LC-3 virtual machine: a 16-bit
// word-addressed address space with memory-mapped keyboard and
// display registers, eight general purpose registers, condition-code
// driven branching and trap-vectored I/O routines.
//
// A Machine is built with New, populated with LoadImage and driven
// with Run or Step. Character I/O goes through the Keyboard and
// Display interfaces; the machine itself never touches terminal
// modes, it assumes raw single-byte reads are already configured by
// the caller.
package vm
