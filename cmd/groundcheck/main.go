package main

import (
	"os"

	"github.com/ppiankov/groundcheck/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
