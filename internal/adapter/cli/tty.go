package cli

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY, indicating that output is
// displayed directly to a user rather than piped or redirected. The verify
// command prints a human summary on a terminal and JSON otherwise.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
