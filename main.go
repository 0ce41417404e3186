package main

import (
	"os"

	"github.com/bitrise-io/bitrise-plugins-ai-work-report/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
