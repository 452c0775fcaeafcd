package main

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/secrets-manager/cmd"
	"github.com/PolarWolf314/secrets-manager/internal/ui"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error.Sprint("Error:")+" "+err.Error())
		os.Exit(1)
	}
}
