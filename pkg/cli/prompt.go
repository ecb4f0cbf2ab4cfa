package cli

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/term"
)

// PromptPassword reads a password from the terminal without echo. Used
// for routers whose configuration omits the password.
func PromptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for password: stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
