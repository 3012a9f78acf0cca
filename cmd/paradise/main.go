package main

import (
	"os"

	"github.com/DH-11027/paradise/cmd/paradise/commands"
)

// main is the entry point for the Paradise CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/paradise [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
