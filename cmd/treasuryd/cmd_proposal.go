package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/x/multisig"
)

// withNode opens the state, calls fn and commits the state if fn succeeds.
func withNode(fl stateFlags, output io.Writer, fn func(n *node) error) error {
	n, err := openNode(fl, output)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := fn(n); err != nil {
		return err
	}
	return n.commit()
}

func cmdSubmit(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("submit", `
Submit a proposal to move funds to the target principal. Only an owner can
submit a proposal.
`)
	var (
		stateFl  = flState(fl)
		asFl     = flAddress(fl, "as", "", "Owner submitting the proposal.")
		targetFl = flAddress(fl, "target", "", "Principal that receives the funds.")
		amountFl = fl.Uint64("amount", 0, "Amount to transfer.")
		assetFl  = fl.String("asset", "native", "Asset to transfer, native or token.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}
	kind, err := multisig.ParseAssetKind(*assetFl)
	if err != nil {
		return err
	}

	return withNode(stateFl, output, func(n *node) error {
		_, err := n.engine.Submit(n.ctx, *asFl, *targetFl, *amountFl, kind)
		return err
	})
}

func cmdApprove(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("approve", `
Approve a proposal. A proposal becomes ready for execution once it has
collected as many approvals as the threshold requires.
`)
	var (
		stateFl = flState(fl)
		asFl    = flAddress(fl, "as", "", "Owner approving the proposal.")
		idFl    = fl.Uint64("id", 0, "Proposal ID.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}
	return withNode(stateFl, output, func(n *node) error {
		return n.engine.Approve(n.ctx, *asFl, *idFl)
	})
}

func cmdRevoke(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("revoke", `
Revoke an approval given earlier. A proposal that is no longer approved by
enough owners leaves the ready index.
`)
	var (
		stateFl = flState(fl)
		asFl    = flAddress(fl, "as", "", "Owner revoking the approval.")
		idFl    = fl.Uint64("id", 0, "Proposal ID.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}
	return withNode(stateFl, output, func(n *node) error {
		return n.engine.Revoke(n.ctx, *asFl, *idFl)
	})
}

type proposalView struct {
	ID        uint64             `json:"id"`
	Submitter treasury.Address   `json:"submitter"`
	Target    treasury.Address   `json:"target"`
	Amount    uint64             `json:"amount"`
	Asset     string             `json:"asset"`
	Approvals []treasury.Address `json:"approvals"`
	Ready     bool               `json:"ready"`
	Executed  bool               `json:"executed"`
	Executor  treasury.Address   `json:"executor,omitempty"`
}

func cmdShow(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("show", `
Print proposals in JSON format. Without an ID all proposals are printed.
`)
	var (
		stateFl = flState(fl)
		idFl    = fl.Uint64("id", 0, "Proposal ID. Zero means all proposals.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}

	n, err := openNode(stateFl, output)
	if err != nil {
		return err
	}
	defer n.Close()

	ids := []uint64{*idFl}
	if *idFl == 0 {
		last, err := n.engine.LastID()
		if err != nil {
			return err
		}
		ids = ids[:0]
		for id := uint64(1); id <= last; id++ {
			ids = append(ids, id)
		}
	}

	views := make([]proposalView, 0, len(ids))
	for _, id := range ids {
		p, err := n.engine.Get(id)
		if err != nil {
			return err
		}
		views = append(views, proposalView{
			ID:        p.ID,
			Submitter: p.Submitter,
			Target:    p.Target,
			Amount:    p.Amount,
			Asset:     p.Kind.String(),
			Approvals: p.Approvals,
			Ready:     p.ReadyPos != 0,
			Executed:  p.Executed,
			Executor:  p.Executor,
		})
	}
	return printJSON(output, views)
}

func cmdReady(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("ready", `
Print the proposals that are ready for execution, in execution order.
`)
	stateFl := flState(fl)
	if err := fl.Parse(args); err != nil {
		return err
	}

	n, err := openNode(stateFl, output)
	if err != nil {
		return err
	}
	defer n.Close()

	ids, err := n.engine.ReadyIDs()
	if err != nil {
		return err
	}
	count, err := n.engine.ReadyCount()
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return printJSON(output, struct {
		Count uint64   `json:"count"`
		IDs   []uint64 `json:"ids"`
	}{count, ids})
}

func printJSON(w io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
