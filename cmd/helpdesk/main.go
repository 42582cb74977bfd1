package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nhle/helpdesk-console/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	env := &cli.Env{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	return cli.NewRootCmd(env).Execute()
}
