// Package main is the entry point for the expense tracker API server.
package main

import (
	"context"
	"fmt"
	"os"

	"expensetracker/src/app/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}
