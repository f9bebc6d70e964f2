package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/mattn/go-isatty"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.piped = stdinPiped()
	if err := a.execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func stdinPiped() bool {
	fd := os.Stdin.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}
