package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd, cliCtx := newRootCommand()
	err := cmd.Execute()
	if closeErr := cliCtx.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
