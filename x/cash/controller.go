package cash

import (
	"math"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
)

// Controller is the functionality needed by other extensions to move native
// currency around.
type Controller interface {
	Balance(db treasury.ReadOnlyKVStore, owner treasury.Address) (uint64, error)
	MoveCoins(db treasury.KVStore, src, dest treasury.Address, amount uint64) error
	IssueCoins(db treasury.KVStore, dest treasury.Address, amount uint64) error
}

// BaseController is a simple implementation of Controller.
type BaseController struct {
	bucket WalletBucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation.
func NewController(bucket WalletBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the native currency held by given principal.
func (c BaseController) Balance(db treasury.ReadOnlyKVStore, owner treasury.Address) (uint64, error) {
	w, err := c.bucket.GetOrEmpty(db, owner)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient coins, it fails.
func (c BaseController) MoveCoins(db treasury.KVStore, src, dest treasury.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "non-positive move")
	}
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	sender, err := c.bucket.GetOrEmpty(db, src)
	if err != nil {
		return err
	}
	if sender.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, want %d", sender.Balance, amount)
	}
	if src.Equals(dest) {
		return nil
	}
	recipient, err := c.bucket.GetOrEmpty(db, dest)
	if err != nil {
		return err
	}
	if recipient.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}

	sender.Balance -= amount
	recipient.Balance += amount
	if err := c.bucket.Save(db, src, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	return c.bucket.Save(db, dest, recipient)
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db treasury.KVStore, dest treasury.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	w, err := c.bucket.GetOrEmpty(db, dest)
	if err != nil {
		return err
	}
	if w.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "wallet balance")
	}
	w.Balance += amount
	return c.bucket.Save(db, dest, w)
}
