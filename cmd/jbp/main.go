package main

import (
	"os"

	"github.com/wonny/jbp-analytics/cmd/jbp/commands"
)

// main is the entry point for the JBP analytics CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/jbp [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
