package token

import (
	"math"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/gconf"
)

// configKey is the gconf package name the token configuration is saved
// under.
const configKey = "token"

// Controller exposes the ledger operations. The caller identity is always an
// explicit argument: owner for Approve, the sender for Transfer and the
// spender for TransferFrom.
type Controller interface {
	BalanceOf(db treasury.ReadOnlyKVStore, owner treasury.Address) (uint64, error)
	Allowance(db treasury.ReadOnlyKVStore, owner, spender treasury.Address) (uint64, error)
	TotalSupply(db treasury.ReadOnlyKVStore) (uint64, error)

	Approve(db treasury.KVStore, owner, spender treasury.Address, amount uint64) error
	Transfer(db treasury.KVStore, from, to treasury.Address, amount uint64) error
	TransferFrom(db treasury.KVStore, spender, from, to treasury.Address, amount uint64) error
	Mint(db treasury.KVStore, minter, to treasury.Address, amount uint64) error
}

// BaseController is the store backed implementation of Controller.
type BaseController struct {
	accounts   AmountBucket
	allowances AmountBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the default buckets.
func NewController() BaseController {
	return BaseController{
		accounts:   NewAccountBucket(),
		allowances: NewAllowanceBucket(),
	}
}

// BalanceOf returns the tokens held by owner.
func (c BaseController) BalanceOf(db treasury.ReadOnlyKVStore, owner treasury.Address) (uint64, error) {
	return c.accounts.Get(db, owner)
}

// Allowance returns how many tokens of owner spender may still move.
func (c BaseController) Allowance(db treasury.ReadOnlyKVStore, owner, spender treasury.Address) (uint64, error) {
	return c.allowances.Get(db, AllowanceKey(owner, spender))
}

// TotalSupply returns the amount of tokens in circulation.
func (c BaseController) TotalSupply(db treasury.ReadOnlyKVStore) (uint64, error) {
	var supply Amount
	raw, err := db.Get([]byte(supplyKey))
	if err != nil {
		return 0, errors.Wrap(err, "supply")
	}
	if err := supply.Unmarshal(raw); err != nil {
		return 0, err
	}
	return supply.Value, nil
}

// Approve sets the allowance of spender over the tokens of owner. It replaces
// any previous value; zero revokes the allowance.
func (c BaseController) Approve(db treasury.KVStore, owner, spender treasury.Address, amount uint64) error {
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := spender.Validate(); err != nil {
		return errors.Wrap(err, "spender")
	}
	return c.allowances.Set(db, AllowanceKey(owner, spender), amount)
}

// Transfer moves tokens owned by from.
func (c BaseController) Transfer(db treasury.KVStore, from, to treasury.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "non-positive transfer")
	}
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	return c.move(db, from, to, amount)
}

// TransferFrom moves tokens of from on behalf of spender. The allowance is
// checked before the balance and is decreased by the moved amount.
func (c BaseController) TransferFrom(db treasury.KVStore, spender, from, to treasury.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "non-positive transfer")
	}
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	key := AllowanceKey(from, spender)
	allowed, err := c.allowances.Get(db, key)
	if err != nil {
		return err
	}
	if allowed < amount {
		return errors.Wrapf(ErrInsufficientAllowance, "allowance %d, want %d", allowed, amount)
	}
	if err := c.move(db, from, to, amount); err != nil {
		return err
	}
	return c.allowances.Set(db, key, allowed-amount)
}

func (c BaseController) move(db treasury.KVStore, from, to treasury.Address, amount uint64) error {
	balance, err := c.accounts.Get(db, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.Wrapf(ErrInsufficientBalance, "balance %d, want %d", balance, amount)
	}
	if from.Equals(to) {
		return nil
	}
	dest, err := c.accounts.Get(db, to)
	if err != nil {
		return err
	}
	if dest > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}
	if err := c.accounts.Set(db, from, balance-amount); err != nil {
		return errors.Wrap(err, "save sender")
	}
	return c.accounts.Set(db, to, dest+amount)
}

// Mint creates new tokens. Only the configured minter is allowed to do it.
func (c BaseController) Mint(db treasury.KVStore, minter, to treasury.Address, amount uint64) error {
	var conf Configuration
	if err := gconf.Load(db, configKey, &conf); err != nil {
		return errors.Wrap(err, "token configuration")
	}
	if len(conf.Minter) == 0 || !conf.Minter.Equals(minter) {
		return errors.Wrap(errors.ErrUnauthorized, "only the minter can mint")
	}
	return c.issue(db, to, amount)
}

func (c BaseController) issue(db treasury.KVStore, to treasury.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "non-positive mint")
	}
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	supply, err := c.TotalSupply(db)
	if err != nil {
		return err
	}
	if supply > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "total supply")
	}
	// Balances never exceed the supply, so this cannot overflow.
	balance, err := c.accounts.Get(db, to)
	if err != nil {
		return err
	}
	if err := c.accounts.Set(db, to, balance+amount); err != nil {
		return err
	}
	raw, err := (&Amount{Value: supply + amount}).Marshal()
	if err != nil {
		return err
	}
	return db.Set([]byte(supplyKey), raw)
}

// LoadConfiguration returns the token description.
func LoadConfiguration(db treasury.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, configKey, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}
