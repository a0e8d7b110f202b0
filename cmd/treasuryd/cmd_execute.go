package main

import (
	"io"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/x/multisig"
)

type receiptView struct {
	ID       uint64           `json:"id"`
	Executor treasury.Address `json:"executor"`
	Target   treasury.Address `json:"target"`
	Amount   uint64           `json:"amount"`
	Asset    string           `json:"asset"`
}

func newReceiptView(r multisig.Receipt) receiptView {
	return receiptView{
		ID:       r.ID,
		Executor: r.Executor,
		Target:   r.Target,
		Amount:   r.Amount,
		Asset:    r.Kind.String(),
	}
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("execute", `
Execute the oldest ready proposal. A native currency proposal is paid with
the attached funds taken from the executor wallet. A token proposal is paid by
the funder through its allowance.
`)
	var (
		stateFl = flState(fl)
		asFl    = flAddress(fl, "as", "", "Owner executing the proposal.")
		fundsFl = fl.Uint64("funds", 0, "Native currency attached to the call.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}

	var receipt *multisig.Receipt
	err := withNode(stateFl, output, func(n *node) error {
		var err error
		receipt, err = n.engine.ExecuteOne(n.ctx, *asFl, *fundsFl)
		return err
	})
	if err != nil {
		return err
	}
	return printJSON(output, newReceiptView(*receipt))
}

func cmdBatch(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("batch", `
Execute all ready proposals in order. Either all of them are executed or none.
The attached funds must cover exactly the sum of all native currency
proposals.
`)
	var (
		stateFl = flState(fl)
		asFl    = flAddress(fl, "as", "", "Owner executing the proposals.")
		fundsFl = fl.Uint64("funds", 0, "Native currency attached to the call.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}

	var receipts []multisig.Receipt
	err := withNode(stateFl, output, func(n *node) error {
		var err error
		receipts, err = n.engine.ExecuteBatch(n.ctx, *asFl, *fundsFl)
		return err
	})
	if err != nil {
		return err
	}
	views := make([]receiptView, len(receipts))
	for i, r := range receipts {
		views[i] = newReceiptView(r)
	}
	return printJSON(output, views)
}
