// Command lc3 runs LC-3 program images.
//
// Usage:
//
//	lc3 [-trace] image [image ...]
//
// Images load in order; each load points the PC at its origin, so the
// last image names the entry point. When stdin is a terminal it is
// switched to raw mode for the duration of the run so the machine
// sees unbuffered, unechoed key presses.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/averen/lc3/vm"
)

var trace = flag.Bool("trace", false, "log every executed instruction")

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-trace] image [image ...]\n", os.Args[0])
		os.Exit(2)
	}
	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "lc3: %v\n", err)
		os.Exit(1)
	}
}

func run(images []string) error {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	m, err := vm.New(
		vm.WithKeyboard(vm.NewKeys(os.Stdin)),
		vm.WithDisplay(out),
	)
	if err != nil {
		return err
	}
	m.Trace = *trace

	for _, name := range images {
		if err := m.LoadImageFile(name); err != nil {
			return err
		}
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		restore, err := rawMode(os.Stdin.Fd())
		if err != nil {
			return err
		}
		defer restore()
		defer out.WriteByte('\n')

		// raw mode survives neither a fatal signal nor os.Exit, so
		// put the terminal back ourselves on interrupt
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		go func() {
			<-sig
			out.Flush()
			restore()
			os.Exit(130)
		}()
	}

	return m.Run()
}
