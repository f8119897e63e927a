package main

import (
	"os"

	"lorryadmin/cmd/seed/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
