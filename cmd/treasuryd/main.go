package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/treasury"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. Every command that changes
// the state runs a single engine operation and commits a single new version
// of the state kept in the home directory.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"add-owner": cmdAddOwner,
	"allow":     cmdAllow,
	"approve":   cmdApprove,
	"balance":   cmdBalance,
	"batch":     cmdBatch,
	"execute":   cmdExecute,
	"init":      cmdInit,
	"keys":      cmdKeys,
	"owners":    cmdOwners,
	"ready":     cmdReady,
	"revoke":    cmdRevoke,
	"show":      cmdShow,
	"submit":    cmdSubmit,
	"version":   cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s operates a multisig treasury kept in a local state.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> --help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(input io.Reader, output io.Writer, args []string) error {
	fmt.Fprintln(output, treasury.Version())
	return nil
}
