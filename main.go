package main

import (
	"os"

	"github.com/xiaot623/gogo/chatclient/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
