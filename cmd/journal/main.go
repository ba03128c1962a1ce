package main

import (
	"os"

	"github.com/wonny/tradelog/backend/cmd/journal/commands"
)

// main is the entry point for the tradelog CLI
// Unified CLI: go run ./cmd/journal [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
