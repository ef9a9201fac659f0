package main

import (
	"github.com/divVerent/midi2abc/internal/cli"
)

func main() {
	cli.Execute(cli.NewRootCommand())
}
