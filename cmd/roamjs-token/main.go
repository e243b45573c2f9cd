package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/roamjs/gateway/pkg/cli"
)

func main() {
	rootCmd := cli.NewRootCommand(os.Stdout, env.ToMap(os.Environ()))

	if err := rootCmd.Execute(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
