// Package main provides the gendata CLI.
package main

import (
	"os"

	"github.com/purin2/sql-practice-tutor/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
