package main

import (
	"os"

	"github.com/wonny/horizon/cmd/horizon/commands"
)

// main is the entry point for the Horizon CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/horizon [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
