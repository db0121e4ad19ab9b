package main

import (
	"os"

	"github.com/dwlr/dpms/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
