// Package main provides the entry point for the maabridge CLI.
package main

import (
	"fmt"
	"os"

	"github.com/foxwhite25/maabridge/cmd/maabridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
