package multisig

import (
	"context"
	"math"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
)

// Receipt describes an executed proposal.
type Receipt struct {
	Executor treasury.Address
	ID       uint64
	Target   treasury.Address
	Amount   uint64
	Kind     AssetKind
}

// ExecuteOne executes the oldest ready proposal.
//
// A native currency proposal is paid with the attached funds, which must be
// equal to the proposal amount and are taken from the caller wallet. A token
// proposal is paid by the funding principal through the ledger; attached
// funds are not used.
//
// Nothing is changed unless the transfer succeeds.
func (e *Engine) ExecuteOne(ctx context.Context, caller treasury.Address, attached uint64) (_ *Receipt, err error) {
	op := e.begin(ctx, "execute")
	defer e.finish(op, &err)

	conf, err := e.authorize(op.db, caller)
	if err != nil {
		return nil, err
	}
	id, err := e.ready.oldest(op.db)
	if err != nil {
		return nil, err
	}
	p, err := e.proposals.get(op.db, id)
	if err != nil {
		return nil, err
	}
	if p.Kind == NativeCurrency && attached != p.Amount {
		return nil, errors.Wrapf(ErrInsufficientFunds, "proposal %d requires %d, attached %d", id, p.Amount, attached)
	}
	return e.execute(op, op.db, conf, caller, p)
}

// ExecuteBatch executes all ready proposals, oldest first. The attached funds
// must be equal to the sum of all ready native currency proposals.
//
// The batch is all or nothing: if any transfer fails, no proposal is
// executed and the error of the failing one is returned.
func (e *Engine) ExecuteBatch(ctx context.Context, caller treasury.Address, attached uint64) (_ []Receipt, err error) {
	op := e.begin(ctx, "execute_batch")
	defer e.finish(op, &err)

	conf, err := e.authorize(op.db, caller)
	if err != nil {
		return nil, err
	}
	ids, err := e.ready.ids(op.db)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.Wrap(ErrNoReadyTransaction, "ready index is empty")
	}

	batch := make([]*Proposal, 0, len(ids))
	var native uint64
	for _, id := range ids {
		p, err := e.proposals.get(op.db, id)
		if err != nil {
			return nil, err
		}
		if p.Kind == NativeCurrency {
			if native > math.MaxUint64-p.Amount {
				return nil, errors.Wrap(ErrInsufficientFunds, "native total overflows")
			}
			native += p.Amount
		}
		batch = append(batch, p)
	}
	if attached != native {
		return nil, errors.Wrapf(ErrInsufficientFunds, "batch requires %d, attached %d", native, attached)
	}

	receipts := make([]Receipt, 0, len(batch))
	for _, p := range batch {
		item := op.db.CacheWrap()
		r, err := e.execute(op, item, conf, caller, p)
		if err != nil {
			item.Discard()
			return nil, errors.Wrapf(err, "batch item %d", p.ID)
		}
		if err := item.Write(); err != nil {
			return nil, errors.Wrapf(err, "batch item %d", p.ID)
		}
		receipts = append(receipts, *r)
	}
	return receipts, nil
}

// execute pays a ready proposal and marks it executed. All changes go to db.
func (e *Engine) execute(op *operation, db treasury.KVStore, conf *Configuration, executor treasury.Address, p *Proposal) (*Receipt, error) {
	if p.Executed {
		return nil, errors.Wrapf(ErrAlreadyExecuted, "proposal %d", p.ID)
	}
	if err := e.transfer(db, conf, executor, p); err != nil {
		return nil, err
	}
	p.Executed = true
	p.Executor = executor
	if err := e.syncReady(db, conf, p); err != nil {
		return nil, err
	}

	op.emit(treasury.NewEvent(EventProposalExecuted).
		WithAddress("executor", executor).
		WithUint("id", p.ID).
		WithAddress("target", p.Target).
		WithUint("amount", p.Amount).
		WithString("asset", p.Kind.String()))
	return &Receipt{
		Executor: executor,
		ID:       p.ID,
		Target:   p.Target,
		Amount:   p.Amount,
		Kind:     p.Kind,
	}, nil
}

func (e *Engine) transfer(db treasury.KVStore, conf *Configuration, executor treasury.Address, p *Proposal) error {
	switch p.Kind {
	case NativeCurrency:
		err := e.bank.MoveCoins(db, executor, p.Target, p.Amount)
		if errors.ErrInsufficientAmount.Is(err) {
			return errors.Wrapf(ErrInsufficientFunds, "proposal %d: %s", p.ID, err)
		}
		return err
	case FungibleToken:
		if err := e.ledger.TransferFrom(db, Principal, conf.Funder, p.Target, p.Amount); err != nil {
			return errors.Wrapf(ErrExternalTransfer, "proposal %d: %s", p.ID, err)
		}
		return nil
	}
	return errors.Wrapf(errors.ErrInvalidState, "proposal %d: asset kind %d", p.ID, uint64(p.Kind))
}
