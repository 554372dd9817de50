package main

import (
	"os"

	"github.com/hydrolox-0/ff-sih-backup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
