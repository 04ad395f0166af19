package main

import (
	"os"

	"github.com/barretodotcom/inmocrm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
