package multisig

import (
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/x/token"
)

// Ledger is the fungible token ledger the engine moves tokens with. The
// engine is a spender: it calls TransferFrom with Principal as the spender
// and the configured funder as the source.
//
// The ledger must keep its state in the store it is given, so that its
// changes are committed or dropped together with the engine operation.
type Ledger interface {
	BalanceOf(db treasury.ReadOnlyKVStore, owner treasury.Address) (uint64, error)
	Allowance(db treasury.ReadOnlyKVStore, owner, spender treasury.Address) (uint64, error)
	Approve(db treasury.KVStore, owner, spender treasury.Address, amount uint64) error
	Transfer(db treasury.KVStore, from, to treasury.Address, amount uint64) error
	TransferFrom(db treasury.KVStore, spender, from, to treasury.Address, amount uint64) error
}

var _ Ledger = token.BaseController{}
