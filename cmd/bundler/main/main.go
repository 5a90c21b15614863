package main

import (
	"os"

	"github.com/arthur-debert/bundler/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
