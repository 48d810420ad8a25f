package main

import (
	"os"

	"github.com/woodhall335/noticecheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
