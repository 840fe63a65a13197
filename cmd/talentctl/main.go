// Command talentctl is the operator tool for talentlens: it assembles
// profiles offline from fixture files and seeds a running server with
// synthetic data it then verifies.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/okian/talentlens/internal/seeding"
)

// Exit codes.
const (
	exitSuccess      = 0
	exitVerification = 1 // seeding ran but the server disagreed with the dataset
	exitError        = 2
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, seeding.ErrVerification) {
			return exitVerification
		}
		return exitError
	}
	return exitSuccess
}
