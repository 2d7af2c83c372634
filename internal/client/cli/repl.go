package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adminkit/adminctl/internal/apperr"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with
// a stub.
var printlnFn = func(args ...any) { fmt.Println(args...) }

// runREPL starts the read-eval-print loop of the console.
//
// It reads a line from the scanner, parses the first token as the command,
// resolves it against the route table and dispatches. Protected routes are
// refused while the session is unauthenticated. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Handler errors are reported here as one-line notifications; taxonomy
// errors show their user-facing message, anything else is printed as-is.
func runREPL(ctx context.Context, a commandSet, statusFn func() string, scanner *bufio.Scanner) {
	printlnFn("Admin console (type 'help' for commands)")

	for {
		printlnFn(fmt.Sprintf("admin %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printHelp(a.loggedIn())
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		r, ok := findRoute(cmd)
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if r.protected && !a.loggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		if err := r.run(ctx, a, args); err != nil {
			printlnFn(notification(err))
		}
	}
}

func printHelp(loggedIn bool) {
	printlnFn("Available commands:")
	for _, r := range routes {
		if r.protected && !loggedIn {
			continue
		}
		printlnFn(fmt.Sprintf("  %-10s %s", r.name, r.help))
	}
	printlnFn("  help       show this help")
	printlnFn("  exit       leave the console")
}

// notification renders err the way it should be shown to the user: the
// stable human-readable message for taxonomy errors, the raw error text
// otherwise.
func notification(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
