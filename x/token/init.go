package token

import (
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/gconf"
)

const optKey = "token"

// Genesis is the "token" section of the genesis file.
type Genesis struct {
	Name     string           `json:"name"`
	Symbol   string           `json:"symbol"`
	Decimals uint64           `json:"decimals"`
	Minter   treasury.Address `json:"minter"`
	Balances []struct {
		Address treasury.Address `json:"address"`
		Amount  uint64           `json:"amount"`
	} `json:"balances"`
	Allowances []struct {
		Owner   treasury.Address `json:"owner"`
		Spender treasury.Address `json:"spender"`
		Amount  uint64           `json:"amount"`
	} `json:"allowances"`
}

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ treasury.Initializer = Initializer{}

// FromGenesis stores the token configuration and the initial balances and
// allowances. Nothing is done if the genesis file has no token section.
func (Initializer) FromGenesis(opts treasury.Options, db treasury.KVStore) error {
	if _, ok := opts[optKey]; !ok {
		return nil
	}
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	conf := Configuration{
		Name:     gen.Name,
		Symbol:   gen.Symbol,
		Decimals: gen.Decimals,
		Minter:   gen.Minter,
	}
	if err := gconf.SaveOnce(db, configKey, &conf); err != nil {
		return errors.Wrap(err, "token configuration")
	}

	ctrl := NewController()
	for i, b := range gen.Balances {
		if err := ctrl.issue(db, b.Address, b.Amount); err != nil {
			return errors.Wrapf(err, "balance #%d", i)
		}
	}
	for i, a := range gen.Allowances {
		if err := ctrl.Approve(db, a.Owner, a.Spender, a.Amount); err != nil {
			return errors.Wrapf(err, "allowance #%d", i)
		}
	}
	return nil
}
