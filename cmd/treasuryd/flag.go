package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/treasury"
	"github.com/spf13/pflag"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// newFlagSet returns a flag set for given command. Usage prints the
// description followed by the flag defaults.
func newFlagSet(name, description string) *pflag.FlagSet {
	fl := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fl.Usage = func() {
		fmt.Fprintln(os.Stderr, description)
		fl.PrintDefaults()
	}
	return fl
}

// stateFlags are the flags shared by all commands that access the state.
type stateFlags struct {
	home     *string
	logLevel *string
}

func flState(fl *pflag.FlagSet) stateFlags {
	return stateFlags{
		home: fl.String("home", env("TREASURY_HOME", filepath.Join(os.Getenv("HOME"), ".treasuryd")),
			"Directory the state is kept in. You can use TREASURY_HOME environment variable to set it."),
		logLevel: fl.String("log-level", "error", "Log level, one of debug, info, error or none."),
	}
}

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided.
// Both hex and "bech32:" prefixed addresses are accepted.
func flAddress(fl *pflag.FlagSet, name, defaultVal, usage string) *treasury.Address {
	var a addressValue
	if defaultVal != "" {
		if err := a.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return (*treasury.Address)(&a)
}

type addressValue treasury.Address

var _ pflag.Value = (*addressValue)(nil)

func (a *addressValue) String() string {
	if len(*a) == 0 {
		return ""
	}
	return treasury.Address(*a).String()
}

func (a *addressValue) Set(raw string) error {
	addr, err := treasury.ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = addressValue(addr)
	return nil
}

func (a *addressValue) Type() string {
	return "address"
}
