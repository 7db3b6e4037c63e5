package main

import (
	"os"

	"github.com/sqlinsight/sqlinsight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
