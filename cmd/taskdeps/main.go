package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/eyaltoledano/claude-task-master-sub004/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var issErr *cli.IssuesError
		if errors.As(err, &issErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
