package multisig

import (
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
)

const optKey = "multisig"

// Genesis is the "multisig" section of the genesis file.
type Genesis struct {
	Threshold uint64             `json:"threshold"`
	Owners    []treasury.Address `json:"owners"`
	// Funder defaults to the first owner.
	Funder      treasury.Address `json:"funder"`
	AutoApprove bool             `json:"auto_approve"`
}

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ treasury.Initializer = Initializer{}

// FromGenesis initializes the engine state. Nothing is done if the genesis
// file has no multisig section.
func (Initializer) FromGenesis(opts treasury.Options, db treasury.KVStore) error {
	if _, ok := opts[optKey]; !ok {
		return nil
	}
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	if len(gen.Owners) == 0 {
		return errors.Wrap(errors.ErrEmpty, "owners")
	}
	conf := Configuration{
		Threshold:   gen.Threshold,
		Funder:      gen.Funder,
		AutoApprove: gen.AutoApprove,
	}
	if len(conf.Funder) == 0 {
		conf.Funder = gen.Owners[0]
	}
	_, err := setup(db, conf, gen.Owners)
	return err
}
