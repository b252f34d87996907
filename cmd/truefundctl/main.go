package main

import (
	"os"

	"truefund.org/internal/cli"
)

func main() {
	env := cli.Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	os.Exit(cli.Run(env, os.Args[1:]))
}
