package main

import (
	"io"

	"github.com/iov-one/treasury"
)

func cmdOwners(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("owners", `
Print the engine configuration together with all owners, in the order they
were added.
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

	conf, err := n.engine.Configuration()
	if err != nil {
		return err
	}
	owners, err := n.engine.Owners()
	if err != nil {
		return err
	}
	return printJSON(output, struct {
		Threshold   uint64             `json:"threshold"`
		Funder      treasury.Address   `json:"funder"`
		AutoApprove bool               `json:"auto_approve"`
		Owners      []treasury.Address `json:"owners"`
	}{conf.Threshold, conf.Funder, conf.AutoApprove, owners})
}

func cmdAddOwner(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("add-owner", `
Add a new owner. Only an existing owner can add another one.
`)
	var (
		stateFl = flState(fl)
		asFl    = flAddress(fl, "as", "", "Owner adding the new one.")
		ownerFl = flAddress(fl, "owner", "", "Principal to become an owner.")
	)
	if err := fl.Parse(args); err != nil {
		return err
	}
	return withNode(stateFl, output, func(n *node) error {
		return n.engine.AddOwner(n.ctx, *asFl, *ownerFl)
	})
}
