package cash

import (
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file
// use treasury.Address, so address in hex, not base64
type GenesisAccount struct {
	Address treasury.Address `json:"address"`
	Amount  uint64           `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ treasury.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts treasury.Options, db treasury.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	ctrl := NewController(NewBucket())
	for i, acct := range accts {
		if err := ctrl.IssueCoins(db, acct.Address, acct.Amount); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}
