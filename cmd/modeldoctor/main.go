// Package main provides the modeldoctor command.
package main

import (
	"os"

	"github.com/leapstack-labs/modeldoctor/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
