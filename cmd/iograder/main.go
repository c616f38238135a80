// Package main is the entry point for the iograder CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/iograder/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
