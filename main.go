package main

import (
	"os"

	"github.com/meysamhadeli/ort-curator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
