package main

import (
	"io"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/x/multisig"
)

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("balance", `
Print the native currency and token balance of a principal, together with
the token amount the engine may still spend on its behalf.
`)
	var (
		stateFl   = flState(fl)
		addressFl = flAddress(fl, "address", "", "Principal to check.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}
	if err := addressFl.Validate(); err != nil {
		return err
	}

	n, err := openNode(stateFl, output)
	if err != nil {
		return err
	}
	defer n.Close()

	db := n.db()
	native, err := n.bank.Balance(db, *addressFl)
	if err != nil {
		return err
	}
	tokens, err := n.tokens.BalanceOf(db, *addressFl)
	if err != nil {
		return err
	}
	allowance, err := n.tokens.Allowance(db, *addressFl, multisig.Principal)
	if err != nil {
		return err
	}
	return printJSON(output, struct {
		Address   treasury.Address `json:"address"`
		Native    uint64           `json:"native"`
		Token     uint64           `json:"token"`
		Allowance uint64           `json:"allowance"`
	}{*addressFl, native, tokens, allowance})
}

func cmdAllow(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("allow", `
Set the token amount the engine may transfer on behalf of a principal. The
funder must allow the engine to spend at least the amount of every token
proposal.
`)
	var (
		stateFl  = flState(fl)
		asFl     = flAddress(fl, "as", "", "Principal granting the allowance.")
		amountFl = fl.Uint64("amount", 0, "Amount the engine may spend. Zero removes the allowance.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}

	return withNode(stateFl, output, func(n *node) error {
		cache := n.db().CacheWrap()
		if err := n.tokens.Approve(cache, *asFl, multisig.Principal, *amountFl); err != nil {
			cache.Discard()
			return err
		}
		return cache.Write()
	})
}
