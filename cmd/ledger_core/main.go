package main

import (
	"os"

	"github.com/SscSPs/ledger_core/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
