package main

import (
	"fmt"
	"os"
)

// Version is overridden at build time.
var Version = "dev"

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "quotectl:", err)
		os.Exit(1)
	}
}
