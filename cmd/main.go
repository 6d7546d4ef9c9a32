package main

import (
	"os"

	"github.com/AyeleBedada/trial-LMS/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
