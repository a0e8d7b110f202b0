package main

import (
	"fmt"
	"io"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/x/cash"
	"github.com/iov-one/treasury/x/multisig"
	"github.com/iov-one/treasury/x/token"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("init", `
Usage: treasuryd init [flags] <genesis.json>

Create the state from a genesis file. The "cash", "token" and "multisig"
sections of the app_options are loaded. This command fails if the state was
already created.
`)
	stateFl := flState(fl)
	if err := fl.Parse(args); err != nil {
		return err
	}
	if fl.NArg() != 1 {
		fl.Usage()
		return fmt.Errorf("genesis file path is required")
	}

	gen, err := treasury.LoadGenesis(fl.Arg(0))
	if err != nil {
		return err
	}

	n, err := openNode(stateFl, output)
	if err != nil {
		return err
	}
	defer n.Close()

	if v, err := n.state.LatestVersion(); err != nil {
		return err
	} else if v.Version != 0 {
		return fmt.Errorf("state in %q already exists at version %d", *stateFl.home, v.Version)
	}

	inits := treasury.ChainInitializers(
		cash.Initializer{},
		token.Initializer{},
		multisig.Initializer{},
	)
	cache := n.db().CacheWrap()
	if err := inits.FromGenesis(gen.AppOptions, cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return err
	}
	return n.commit()
}
