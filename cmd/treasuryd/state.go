package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/store/iavl"
	"github.com/iov-one/treasury/x/cash"
	"github.com/iov-one/treasury/x/multisig"
	"github.com/iov-one/treasury/x/token"
	"github.com/tendermint/tendermint/libs/log"
)

// node gives access to the treasury state kept in the home directory.
type node struct {
	ctx    context.Context
	state  iavl.CommitStore
	engine *multisig.Engine
	bank   cash.BaseController
	tokens token.BaseController
}

// openNode loads the latest state version. Committed events are written to
// events, one per line.
func openNode(fl stateFlags, events io.Writer) (*node, error) {
	logger, err := newLogger(*fl.logLevel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(*fl.home, 0700); err != nil {
		return nil, fmt.Errorf("cannot create home directory: %s", err)
	}
	state, err := iavl.NewCommitStore(*fl.home, "state")
	if err != nil {
		return nil, err
	}
	if err := state.LoadLatestVersion(); err != nil {
		state.Close()
		return nil, err
	}

	n := &node{
		ctx:    treasury.WithLogger(context.Background(), logger),
		state:  state,
		bank:   cash.NewController(cash.NewBucket()),
		tokens: token.NewController(),
	}
	n.engine = multisig.NewEngine(state.Adapter(), n.tokens, n.bank,
		multisig.WithEventSink(treasury.EventSinkFunc(func(e treasury.Event) {
			printEvent(events, e)
		})))
	return n, nil
}

// commit persists all changes as a new state version.
func (n *node) commit() error {
	id, err := n.state.Commit()
	if err != nil {
		return err
	}
	treasury.GetLogger(n.ctx).Info("state committed", "version", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return nil
}

func (n *node) Close() {
	n.state.Close()
}

// db returns the state view used for direct reads and writes.
func (n *node) db() treasury.CacheableKVStore {
	return n.state.Adapter()
}

func newLogger(level string) (log.Logger, error) {
	option, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "log level: %s", err)
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	return log.NewFilter(logger, option).With("module", "treasuryd"), nil
}

func printEvent(w io.Writer, e treasury.Event) {
	fmt.Fprint(w, e.Kind)
	for _, t := range e.Tags {
		fmt.Fprintf(w, " %s=%s", t.Key, t.Value)
	}
	fmt.Fprintln(w)
}
