package multisig

import (
	"context"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/gconf"
	"github.com/iov-one/treasury/x/cash"
)

// configKey is the gconf package name the configuration is saved under.
const configKey = "multisig"

// Kinds of the events emitted by the engine.
const (
	EventOwnerAdded        = "OwnerAdded"
	EventProposalSubmitted = "ProposalSubmitted"
	EventProposalApproved  = "ProposalApproved"
	EventProposalRevoked   = "ProposalRevoked"
	EventProposalExecuted  = "ProposalExecuted"
)

// Engine owns the multisig state kept in its store. Operations must be
// serialized by the caller; the engine does no locking.
type Engine struct {
	db      treasury.CacheableKVStore
	ledger  Ledger
	bank    cash.Controller
	sink    treasury.EventSink
	metrics *Metrics

	owners    ownerSet
	proposals proposalStore
	ready     readyIndex
}

// Option configures an Engine.
type Option func(*Engine)

// WithEventSink sets the receiver of the committed events. By default events
// are dropped.
func WithEventSink(s treasury.EventSink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// WithMetrics enables metrics collection.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine returns an engine keeping its state in db. Token proposals are
// paid through ledger and native currency proposals through bank. Both must
// keep their state in the store they are called with.
func NewEngine(db treasury.CacheableKVStore, ledger Ledger, bank cash.Controller, opts ...Option) *Engine {
	e := &Engine{
		db:        db,
		ledger:    ledger,
		bank:      bank,
		sink:      treasury.NopEventSink{},
		owners:    newOwnerSet(),
		proposals: newProposalStore(),
		ready:     newReadyIndex(),
	}
	for _, fn := range opts {
		fn(e)
	}
	return e
}

// operation is the scope of a single state changing call. All writes go to a
// cache wrap and all events are held until the wrap is written.
type operation struct {
	name   string
	ctx    context.Context
	db     treasury.KVCacheWrap
	events []treasury.Event
}

func (op *operation) emit(ev treasury.Event) {
	op.events = append(op.events, ev)
}

func (e *Engine) begin(ctx context.Context, name string) *operation {
	return &operation{
		name: name,
		ctx:  ctx,
		db:   e.db.CacheWrap(),
	}
}

// finish writes the operation changes and delivers its events if *errp is
// nil, otherwise it drops them. It must be deferred directly by the
// operation so that a panic is recovered as well.
func (e *Engine) finish(op *operation, errp *error) {
	if r := recover(); r != nil {
		*errp = errors.Wrapf(errors.ErrPanic, "%v", r)
	}
	logger := treasury.GetLogger(op.ctx).With("module", "multisig", "operation", op.name)

	if *errp == nil {
		if err := commit(op.db); err != nil {
			*errp = errors.Wrap(err, "cannot commit")
		}
	}
	e.metrics.observe(op.name, *errp)

	if err := *errp; err != nil {
		op.db.Discard()
		if errors.Code(err) == errors.InternalCode || ErrExternalTransfer.Is(err) || errors.ErrPanic.Is(err) {
			logger.Error("operation failed", "err", err)
		} else {
			logger.Debug("operation rejected", "err", err)
		}
		return
	}

	for _, ev := range op.events {
		e.sink.Emit(ev)
	}
	logger.Info("operation committed", "events", len(op.events))
	if n, err := e.ready.count(e.db); err == nil {
		e.metrics.setReady(n)
	}
}

// commit writes db to its parent, turning a panic of the store into an
// error.
func commit(db treasury.KVCacheWrap) (err error) {
	defer errors.Recover(&err)
	return db.Write()
}

// Initialize configures the engine with given threshold. The caller becomes
// the first owner and the funding principal of token proposals. It fails
// with ErrAlreadyInitialized when called for the second time.
func (e *Engine) Initialize(ctx context.Context, caller treasury.Address, threshold uint64) (err error) {
	op := e.begin(ctx, "initialize")
	defer e.finish(op, &err)

	conf := Configuration{
		Threshold: threshold,
		Funder:    caller,
	}
	events, err := setup(op.db, conf, []treasury.Address{caller})
	if err != nil {
		return err
	}
	for _, ev := range events {
		op.emit(ev)
	}
	return nil
}

// setup stores the configuration and the initial owners.
func setup(db treasury.KVStore, conf Configuration, owners []treasury.Address) ([]treasury.Event, error) {
	if len(owners) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "owners")
	}
	if err := gconf.SaveOnce(db, configKey, &conf); err != nil {
		if errors.ErrDuplicate.Is(err) {
			return nil, errors.Wrap(ErrAlreadyInitialized, "multisig engine")
		}
		return nil, errors.Wrap(err, "configuration")
	}
	set := newOwnerSet()
	events := make([]treasury.Event, 0, len(owners))
	for _, o := range owners {
		if err := set.add(db, o); err != nil {
			return nil, err
		}
		events = append(events, treasury.NewEvent(EventOwnerAdded).WithAddress("principal", o))
	}
	return events, nil
}

// Configuration returns the engine configuration. It fails with
// ErrNotInitialized before the engine is initialized.
func (e *Engine) Configuration() (*Configuration, error) {
	return loadConfig(e.db)
}

// Threshold returns the number of approvals a proposal needs to be ready.
func (e *Engine) Threshold() (uint64, error) {
	conf, err := loadConfig(e.db)
	if err != nil {
		return 0, err
	}
	return conf.Threshold, nil
}

func loadConfig(db treasury.ReadOnlyKVStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, configKey, &conf); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(ErrNotInitialized, "multisig engine")
		}
		return nil, err
	}
	return &conf, nil
}

// authorize loads the configuration and ensures that caller is an owner.
func (e *Engine) authorize(db treasury.ReadOnlyKVStore, caller treasury.Address) (*Configuration, error) {
	conf, err := loadConfig(db)
	if err != nil {
		return nil, err
	}
	ok, err := e.owners.has(db, caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not an owner", caller)
	}
	return conf, nil
}

// AddOwner adds candidate to the owner set. Only an owner can do it.
func (e *Engine) AddOwner(ctx context.Context, caller, candidate treasury.Address) (err error) {
	op := e.begin(ctx, "add_owner")
	defer e.finish(op, &err)

	if _, err := e.authorize(op.db, caller); err != nil {
		return err
	}
	if err := e.owners.add(op.db, candidate); err != nil {
		return err
	}
	op.emit(treasury.NewEvent(EventOwnerAdded).WithAddress("principal", candidate))
	return nil
}

// IsOwner returns true if given principal belongs to the owner set.
func (e *Engine) IsOwner(a treasury.Address) (bool, error) {
	return e.owners.has(e.db, a)
}

// Owners returns all owners in the order they were added.
func (e *Engine) Owners() ([]treasury.Address, error) {
	return e.owners.list(e.db)
}

// OwnerCount returns the size of the owner set.
func (e *Engine) OwnerCount() (int, error) {
	return e.owners.count(e.db)
}

// Submit stores a new proposal and returns its id. Ids start at 1 and a
// rejected submission does not consume one.
func (e *Engine) Submit(ctx context.Context, caller, target treasury.Address, amount uint64, kind AssetKind) (id uint64, err error) {
	op := e.begin(ctx, "submit")
	defer e.finish(op, &err)

	conf, err := e.authorize(op.db, caller)
	if err != nil {
		return 0, err
	}
	if err := target.Validate(); err != nil {
		return 0, errors.Wrapf(ErrInvalidPrincipal, "target: %s", err)
	}
	if amount == 0 {
		return 0, errors.Wrap(errors.ErrInvalidAmount, "amount must be greater than zero")
	}
	if err := kind.Validate(); err != nil {
		return 0, err
	}

	p := &Proposal{
		Submitter: caller,
		Target:    target,
		Amount:    amount,
		Kind:      kind,
	}
	if conf.AutoApprove {
		p.Approvals = []treasury.Address{caller}
	}
	if err := e.proposals.create(op.db, p); err != nil {
		return 0, err
	}
	if err := e.syncReady(op.db, conf, p); err != nil {
		return 0, err
	}

	op.emit(treasury.NewEvent(EventProposalSubmitted).
		WithUint("id", p.ID).
		WithAddress("submitter", caller))
	if conf.AutoApprove {
		op.emit(approvedEvent(caller, p.ID))
	}
	return p.ID, nil
}

// Get returns the proposal with given id.
func (e *Engine) Get(id uint64) (*Proposal, error) {
	return e.proposals.get(e.db, id)
}

// LastID returns the id of the most recent proposal, or zero if none was
// submitted.
func (e *Engine) LastID() (uint64, error) {
	return e.proposals.latest(e.db)
}

// Approve records the approval of caller. The proposal enters the ready
// index when the approval count reaches the threshold.
func (e *Engine) Approve(ctx context.Context, caller treasury.Address, id uint64) (err error) {
	op := e.begin(ctx, "approve")
	defer e.finish(op, &err)

	conf, p, err := e.pending(op.db, caller, id)
	if err != nil {
		return err
	}
	if p.HasApproval(caller) {
		return errors.Wrapf(ErrAlreadyApproved, "proposal %d by %s", id, caller)
	}
	p.Approvals = append(p.Approvals, caller)
	if err := e.syncReady(op.db, conf, p); err != nil {
		return err
	}
	op.emit(approvedEvent(caller, id))
	return nil
}

// Revoke withdraws the approval of caller. The proposal leaves the ready
// index when the approval count drops below the threshold.
func (e *Engine) Revoke(ctx context.Context, caller treasury.Address, id uint64) (err error) {
	op := e.begin(ctx, "revoke")
	defer e.finish(op, &err)

	conf, p, err := e.pending(op.db, caller, id)
	if err != nil {
		return err
	}
	i := p.approvalIndex(caller)
	if i < 0 {
		return errors.Wrapf(ErrNotApproved, "proposal %d by %s", id, caller)
	}
	p.Approvals = append(p.Approvals[:i], p.Approvals[i+1:]...)
	if err := e.syncReady(op.db, conf, p); err != nil {
		return err
	}
	op.emit(treasury.NewEvent(EventProposalRevoked).
		WithAddress("revoker", caller).
		WithUint("id", id))
	return nil
}

// pending loads a proposal that an owner wants to vote on.
func (e *Engine) pending(db treasury.ReadOnlyKVStore, caller treasury.Address, id uint64) (*Configuration, *Proposal, error) {
	conf, err := e.authorize(db, caller)
	if err != nil {
		return nil, nil, err
	}
	p, err := e.proposals.get(db, id)
	if err != nil {
		return nil, nil, err
	}
	if p.Executed {
		return nil, nil, errors.Wrapf(ErrAlreadyExecuted, "proposal %d", id)
	}
	return conf, p, nil
}

// syncReady queues or dequeues p so that it is in the ready index exactly
// when it has enough approvals and is not executed, then saves p.
func (e *Engine) syncReady(db treasury.KVStore, conf *Configuration, p *Proposal) error {
	var err error
	if !p.Executed && uint64(len(p.Approvals)) >= conf.Threshold {
		err = e.ready.push(db, p)
	} else {
		err = e.ready.remove(db, p)
	}
	if err != nil {
		return err
	}
	return e.proposals.save(db, p)
}

// ApprovalCount returns the number of distinct approvals of a proposal.
func (e *Engine) ApprovalCount(id uint64) (int, error) {
	p, err := e.proposals.get(e.db, id)
	if err != nil {
		return 0, err
	}
	return len(p.Approvals), nil
}

// IsApprover returns true if given principal approved the proposal.
func (e *Engine) IsApprover(id uint64, a treasury.Address) (bool, error) {
	p, err := e.proposals.get(e.db, id)
	if err != nil {
		return false, err
	}
	return p.HasApproval(a), nil
}

// Executed returns true if the proposal was executed.
func (e *Engine) Executed(id uint64) (bool, error) {
	p, err := e.proposals.get(e.db, id)
	if err != nil {
		return false, err
	}
	return p.Executed, nil
}

// ReadyCount returns the size of the ready index.
func (e *Engine) ReadyCount() (uint64, error) {
	return e.ready.count(e.db)
}

// ReadyIDs returns the ids of the ready proposals in execution order.
func (e *Engine) ReadyIDs() ([]uint64, error) {
	return e.ready.ids(e.db)
}

func approvedEvent(approver treasury.Address, id uint64) treasury.Event {
	return treasury.NewEvent(EventProposalApproved).
		WithAddress("approver", approver).
		WithUint("id", id)
}
