package main

import (
	"fmt"
	"os"

	"jk80-print/cmd/jk80ctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
