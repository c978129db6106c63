package main

import (
	"os"

	"github.com/wonny/etf-rs/cmd/etfrs/commands"
)

// main is the entry point for the ETF RS CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/etfrs [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
