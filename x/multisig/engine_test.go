package multisig

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/store"
	"github.com/iov-one/treasury/treasurytest"
	"github.com/iov-one/treasury/x/cash"
	"github.com/iov-one/treasury/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ownerO  = treasurytest.SeedAddress(1)
	ownerA  = treasurytest.SeedAddress(2)
	ownerB  = treasurytest.SeedAddress(3)
	target  = treasurytest.SeedAddress(4)
	outside = treasurytest.SeedAddress(5)
)

type fixture struct {
	db     treasury.CacheableKVStore
	engine *Engine
	events *treasurytest.EventRecorder
	bank   cash.BaseController
	tokens token.BaseController
}

// newFixture returns an engine initialized by ownerO with given threshold.
// ownerO is also the token minter and the funding principal.
func newFixture(t *testing.T, threshold uint64, opts ...Option) *fixture {
	t.Helper()

	db := store.MemStore()
	tokenGenesis := treasury.Options{
		"token": json.RawMessage(`{"symbol": "TRT", "minter": "` + ownerO.String() + `"}`),
	}
	require.NoError(t, token.Initializer{}.FromGenesis(tokenGenesis, db))

	f := &fixture{
		db:     db,
		events: &treasurytest.EventRecorder{},
		bank:   cash.NewController(cash.NewBucket()),
		tokens: token.NewController(),
	}
	opts = append([]Option{WithEventSink(f.events)}, opts...)
	f.engine = NewEngine(db, f.tokens, f.bank, opts...)
	require.NoError(t, f.engine.Initialize(context.Background(), ownerO, threshold))
	f.events.Reset()
	return f
}

func (f *fixture) addOwners(t *testing.T, owners ...treasury.Address) {
	t.Helper()
	for _, o := range owners {
		require.NoError(t, f.engine.AddOwner(context.Background(), ownerO, o))
	}
}

func (f *fixture) submit(t *testing.T, amount uint64, kind AssetKind) uint64 {
	t.Helper()
	id, err := f.engine.Submit(context.Background(), ownerO, target, amount, kind)
	require.NoError(t, err)
	return id
}

func (f *fixture) approve(t *testing.T, id uint64, owners ...treasury.Address) {
	t.Helper()
	for _, o := range owners {
		require.NoError(t, f.engine.Approve(context.Background(), o, id))
	}
}

func (f *fixture) issue(t *testing.T, to treasury.Address, amount uint64) {
	t.Helper()
	require.NoError(t, f.bank.IssueCoins(f.db, to, amount))
}

// fundTokens mints tokens to the funder and allows the engine to spend them.
func (f *fixture) fundTokens(t *testing.T, balance, allowance uint64) {
	t.Helper()
	if balance > 0 {
		require.NoError(t, f.tokens.Mint(f.db, ownerO, ownerO, balance))
	}
	require.NoError(t, f.tokens.Approve(f.db, ownerO, Principal, allowance))
}

func (f *fixture) assertReady(t *testing.T, want ...uint64) {
	t.Helper()
	ids, err := f.engine.ReadyIDs()
	require.NoError(t, err)
	if len(want) == 0 {
		assert.Empty(t, ids)
	} else {
		assert.Equal(t, want, ids)
	}
	n, err := f.engine.ReadyCount()
	require.NoError(t, err)
	assert.EqualValues(t, len(want), n)
}

func (f *fixture) nativeBalance(t *testing.T, a treasury.Address) uint64 {
	t.Helper()
	n, err := f.bank.Balance(f.db, a)
	require.NoError(t, err)
	return n
}

func (f *fixture) tokenBalance(t *testing.T, a treasury.Address) uint64 {
	t.Helper()
	n, err := f.tokens.BalanceOf(f.db, a)
	require.NoError(t, err)
	return n
}

func TestQuorumLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 3)

	// A single owner cannot reach a threshold of three.
	id := f.submit(t, 100, NativeCurrency)
	assert.EqualValues(t, 1, id)
	f.approve(t, id, ownerO)
	count, err := f.engine.ApprovalCount(id)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	f.assertReady(t)

	f.addOwners(t, ownerA, ownerB)
	f.approve(t, id, ownerA)
	f.assertReady(t)
	f.approve(t, id, ownerB)
	f.assertReady(t, id)

	f.issue(t, ownerA, 100)
	receipt, err := f.engine.ExecuteOne(ctx, ownerA, 100)
	require.NoError(t, err)
	assert.Equal(t, &Receipt{Executor: ownerA, ID: id, Target: target, Amount: 100, Kind: NativeCurrency}, receipt)
	assert.EqualValues(t, 100, f.nativeBalance(t, target))
	assert.EqualValues(t, 0, f.nativeBalance(t, ownerA))
	f.assertReady(t)
	executed, err := f.engine.Executed(id)
	require.NoError(t, err)
	assert.True(t, executed)

	err = f.engine.Revoke(ctx, ownerA, id)
	assert.True(t, ErrAlreadyExecuted.Is(err), "unexpected error: %+v", err)
	err = f.engine.Approve(ctx, outside, id)
	assert.True(t, errors.ErrUnauthorized.Is(err), "unexpected error: %+v", err)

	_, err = f.engine.Submit(ctx, ownerO, target, 0, NativeCurrency)
	assert.True(t, errors.ErrInvalidAmount.Is(err), "unexpected error: %+v", err)
	next := f.submit(t, 5, NativeCurrency)
	assert.EqualValues(t, 2, next)

	assert.Equal(t, []string{
		EventOwnerAdded,
		EventOwnerAdded,
		EventProposalApproved,
		EventProposalApproved,
		EventProposalExecuted,
		EventProposalSubmitted,
	}, f.events.Kinds()[2:])
	assert.Equal(t, EventProposalSubmitted, f.events.Kinds()[0])
	assert.Equal(t, EventProposalApproved, f.events.Kinds()[1])
}

func TestExecuteFromDrainedWallet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	first := f.submit(t, 10, NativeCurrency)
	f.approve(t, first, ownerO)
	f.issue(t, ownerO, 10)
	_, err := f.engine.ExecuteOne(ctx, ownerO, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, f.nativeBalance(t, ownerO))

	second := f.submit(t, 7, NativeCurrency)
	f.approve(t, second, ownerO)
	_, err = f.engine.ExecuteOne(ctx, ownerO, 7)
	assert.True(t, ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)

	f.issue(t, ownerO, 5)
	assert.EqualValues(t, 5, f.nativeBalance(t, ownerO))
	_, err = f.engine.ExecuteOne(ctx, ownerO, 7)
	assert.True(t, ErrInsufficientFunds.Is(err), "unexpected error: %+v", err)
	f.assertReady(t, second)

	f.issue(t, ownerO, 2)
	receipt, err := f.engine.ExecuteOne(ctx, ownerO, 7)
	require.NoError(t, err)
	assert.Equal(t, second, receipt.ID)
	assert.EqualValues(t, 0, f.nativeBalance(t, ownerO))
	assert.EqualValues(t, 17, f.nativeBalance(t, target))
	f.assertReady(t)
}

func TestOperationErrors(t *testing.T) {
	zero := make(treasury.Address, treasury.AddressLength)

	cases := map[string]struct {
		// prepare is called on an engine initialized by ownerO with
		// threshold 2 and owners ownerO and ownerA.
		prepare func(t *testing.T, f *fixture)
		run     func(f *fixture) error
		wantErr *errors.Error
	}{
		"submit by a non owner": {
			run: func(f *fixture) error {
				_, err := f.engine.Submit(context.Background(), outside, target, 1, NativeCurrency)
				return err
			},
			wantErr: errors.ErrUnauthorized,
		},
		"submit to the null principal": {
			run: func(f *fixture) error {
				_, err := f.engine.Submit(context.Background(), ownerO, zero, 1, NativeCurrency)
				return err
			},
			wantErr: ErrInvalidPrincipal,
		},
		"submit without target": {
			run: func(f *fixture) error {
				_, err := f.engine.Submit(context.Background(), ownerO, nil, 1, FungibleToken)
				return err
			},
			wantErr: ErrInvalidPrincipal,
		},
		"submit zero amount": {
			run: func(f *fixture) error {
				_, err := f.engine.Submit(context.Background(), ownerO, target, 0, FungibleToken)
				return err
			},
			wantErr: errors.ErrInvalidAmount,
		},
		"submit unknown asset": {
			run: func(f *fixture) error {
				_, err := f.engine.Submit(context.Background(), ownerO, target, 1, AssetKind(7))
				return err
			},
			wantErr: errors.ErrInvalidInput,
		},
		"approve missing proposal": {
			run: func(f *fixture) error {
				return f.engine.Approve(context.Background(), ownerO, 42)
			},
			wantErr: errors.ErrNotFound,
		},
		"approve twice": {
			prepare: func(t *testing.T, f *fixture) {
				id := f.submit(t, 1, NativeCurrency)
				f.approve(t, id, ownerO)
			},
			run: func(f *fixture) error {
				return f.engine.Approve(context.Background(), ownerO, 1)
			},
			wantErr: ErrAlreadyApproved,
		},
		"approve by a non owner": {
			prepare: func(t *testing.T, f *fixture) {
				f.submit(t, 1, NativeCurrency)
			},
			run: func(f *fixture) error {
				return f.engine.Approve(context.Background(), outside, 1)
			},
			wantErr: errors.ErrUnauthorized,
		},
		"revoke without approval": {
			prepare: func(t *testing.T, f *fixture) {
				f.submit(t, 1, NativeCurrency)
			},
			run: func(f *fixture) error {
				return f.engine.Revoke(context.Background(), ownerA, 1)
			},
			wantErr: ErrNotApproved,
		},
		"revoke missing proposal": {
			run: func(f *fixture) error {
				return f.engine.Revoke(context.Background(), ownerA, 1)
			},
			wantErr: errors.ErrNotFound,
		},
		"add an existing owner": {
			run: func(f *fixture) error {
				return f.engine.AddOwner(context.Background(), ownerO, ownerA)
			},
			wantErr: errors.ErrDuplicate,
		},
		"add the null principal": {
			run: func(f *fixture) error {
				return f.engine.AddOwner(context.Background(), ownerO, zero)
			},
			wantErr: ErrInvalidPrincipal,
		},
		"add owner by a non owner": {
			run: func(f *fixture) error {
				return f.engine.AddOwner(context.Background(), outside, ownerB)
			},
			wantErr: errors.ErrUnauthorized,
		},
		"execute with nothing ready": {
			prepare: func(t *testing.T, f *fixture) {
				f.submit(t, 1, NativeCurrency)
			},
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteOne(context.Background(), ownerO, 1)
				return err
			},
			wantErr: ErrNoReadyTransaction,
		},
		"batch with nothing ready": {
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteBatch(context.Background(), ownerO, 0)
				return err
			},
			wantErr: ErrNoReadyTransaction,
		},
		"execute by a non owner": {
			prepare: func(t *testing.T, f *fixture) {
				id := f.submit(t, 1, NativeCurrency)
				f.approve(t, id, ownerO, ownerA)
			},
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteOne(context.Background(), outside, 1)
				return err
			},
			wantErr: errors.ErrUnauthorized,
		},
		"execute with wrong attached funds": {
			prepare: func(t *testing.T, f *fixture) {
				id := f.submit(t, 10, NativeCurrency)
				f.approve(t, id, ownerO, ownerA)
				f.issue(t, ownerO, 100)
			},
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteOne(context.Background(), ownerO, 9)
				return err
			},
			wantErr: ErrInsufficientFunds,
		},
		"execute without funds in the wallet": {
			prepare: func(t *testing.T, f *fixture) {
				id := f.submit(t, 10, NativeCurrency)
				f.approve(t, id, ownerO, ownerA)
				f.issue(t, ownerO, 9)
			},
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteOne(context.Background(), ownerO, 10)
				return err
			},
			wantErr: ErrInsufficientFunds,
		},
		"execute token without allowance": {
			prepare: func(t *testing.T, f *fixture) {
				id := f.submit(t, 10, FungibleToken)
				f.approve(t, id, ownerO, ownerA)
				f.fundTokens(t, 100, 0)
			},
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteOne(context.Background(), ownerO, 0)
				return err
			},
			wantErr: ErrExternalTransfer,
		},
		"execute token without balance": {
			prepare: func(t *testing.T, f *fixture) {
				id := f.submit(t, 10, FungibleToken)
				f.approve(t, id, ownerO, ownerA)
				f.fundTokens(t, 5, 100)
			},
			run: func(f *fixture) error {
				_, err := f.engine.ExecuteOne(context.Background(), ownerO, 0)
				return err
			},
			wantErr: ErrExternalTransfer,
		},
		"initialize twice": {
			run: func(f *fixture) error {
				return f.engine.Initialize(context.Background(), ownerA, 1)
			},
			wantErr: ErrAlreadyInitialized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 2)
			f.addOwners(t, ownerA)
			if tc.prepare != nil {
				tc.prepare(t, f)
			}
			f.events.Reset()

			err := tc.run(f)
			assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			assert.Empty(t, f.events.Events, "rejected operation emitted events")
		})
	}
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(store.MemStore(), token.NewController(), cash.NewController(cash.NewBucket()))

	_, err := e.Submit(ctx, ownerO, target, 1, NativeCurrency)
	assert.True(t, ErrNotInitialized.Is(err))
	err = e.AddOwner(ctx, ownerO, ownerA)
	assert.True(t, ErrNotInitialized.Is(err))
	_, err = e.ExecuteOne(ctx, ownerO, 0)
	assert.True(t, ErrNotInitialized.Is(err))
	_, err = e.Threshold()
	assert.True(t, ErrNotInitialized.Is(err))

	ok, err := e.IsOwner(ownerO)
	require.NoError(t, err)
	assert.False(t, ok)

	err = e.Initialize(ctx, ownerO, 0)
	assert.True(t, errors.ErrInvalidInput.Is(err))
	err = e.Initialize(ctx, nil, 1)
	assert.True(t, ErrInvalidPrincipal.Is(err))

	// failed attempts do not count as initialization
	require.NoError(t, e.Initialize(ctx, ownerO, 1))
	threshold, err := e.Threshold()
	require.NoError(t, err)
	assert.EqualValues(t, 1, threshold)
	conf, err := e.Configuration()
	require.NoError(t, err)
	assert.Equal(t, ownerO, conf.Funder)
}

func TestRejectedSubmitKeepsSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	assert.EqualValues(t, 1, f.submit(t, 1, NativeCurrency))
	_, err := f.engine.Submit(ctx, outside, target, 1, NativeCurrency)
	require.Error(t, err)
	_, err = f.engine.Submit(ctx, ownerO, nil, 1, NativeCurrency)
	require.Error(t, err)
	assert.EqualValues(t, 2, f.submit(t, 1, FungibleToken))

	last, err := f.engine.LastID()
	require.NoError(t, err)
	assert.EqualValues(t, 2, last)
	_, err = f.engine.Get(3)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestApprovalsBeyondThreshold(t *testing.T) {
	f := newFixture(t, 1)
	f.addOwners(t, ownerA, ownerB)

	id := f.submit(t, 1, NativeCurrency)
	f.approve(t, id, ownerO, ownerA, ownerB)
	f.assertReady(t, id)

	// dropping to the threshold keeps the proposal queued at its place
	other := f.submit(t, 1, NativeCurrency)
	f.approve(t, other, ownerA)
	require.NoError(t, f.engine.Revoke(context.Background(), ownerB, id))
	require.NoError(t, f.engine.Revoke(context.Background(), ownerO, id))
	f.assertReady(t, id, other)

	require.NoError(t, f.engine.Revoke(context.Background(), ownerA, id))
	f.assertReady(t, other)
	count, err := f.engine.ApprovalCount(id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// becoming ready again puts the proposal at the end of the queue
	f.approve(t, id, ownerB)
	f.assertReady(t, other, id)
	ok, err := f.engine.IsApprover(id, ownerB)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.engine.IsApprover(id, ownerA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExecuteOneFollowsReadyOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.fundTokens(t, 100, 100)

	first := f.submit(t, 10, FungibleToken)
	second := f.submit(t, 20, FungibleToken)
	third := f.submit(t, 30, FungibleToken)
	f.approve(t, third, ownerO)
	f.approve(t, first, ownerO)
	f.approve(t, second, ownerO)
	f.assertReady(t, third, first, second)

	for _, want := range []uint64{third, first, second} {
		r, err := f.engine.ExecuteOne(ctx, ownerO, 0)
		require.NoError(t, err)
		assert.Equal(t, want, r.ID)
	}
	f.assertReady(t)
	assert.EqualValues(t, 60, f.tokenBalance(t, target))
	assert.EqualValues(t, 40, f.tokenBalance(t, ownerO))
	allowance, err := f.tokens.Allowance(f.db, ownerO, Principal)
	require.NoError(t, err)
	assert.EqualValues(t, 40, allowance)

	p, err := f.engine.Get(first)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, ownerO, p.Executor)
	assert.EqualValues(t, 0, p.ReadyPos)

	_, err = f.engine.ExecuteOne(ctx, ownerO, 0)
	assert.True(t, ErrNoReadyTransaction.Is(err))
}

func TestAutoApprove(t *testing.T) {
	db := store.MemStore()
	events := &treasurytest.EventRecorder{}
	genesis := treasury.Options{
		"multisig": json.RawMessage(`{
			"threshold": 1,
			"owners": ["` + ownerO.String() + `", "` + ownerA.String() + `"],
			"auto_approve": true
		}`),
	}
	require.NoError(t, Initializer{}.FromGenesis(genesis, db))

	e := NewEngine(db, token.NewController(), cash.NewController(cash.NewBucket()), WithEventSink(events))
	id, err := e.Submit(context.Background(), ownerA, target, 3, NativeCurrency)
	require.NoError(t, err)

	ok, err := e.IsApprover(id, ownerA)
	require.NoError(t, err)
	assert.True(t, ok)
	ids, err := e.ReadyIDs()
	require.NoError(t, err)
	assert.Equal(t, []uint64{id}, ids)
	assert.Equal(t, []string{EventProposalSubmitted, EventProposalApproved}, events.Kinds())

	err = e.Approve(context.Background(), ownerA, id)
	assert.True(t, ErrAlreadyApproved.Is(err))
}

func TestEventAttributes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	f.issue(t, ownerO, 7)

	id := f.submit(t, 7, NativeCurrency)
	f.approve(t, id, ownerO)
	_, err := f.engine.ExecuteOne(ctx, ownerO, 7)
	require.NoError(t, err)

	ev, ok := f.events.Last()
	require.True(t, ok)
	assert.Equal(t, EventProposalExecuted, ev.Kind)
	for key, want := range map[string]string{
		"executor": ownerO.String(),
		"id":       "1",
		"target":   target.String(),
		"amount":   "7",
		"asset":    "native",
	} {
		got, ok := ev.Attr(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}

	submitted := f.events.Events[0]
	got, _ := submitted.Attr("submitter")
	assert.Equal(t, ownerO.String(), got)
}
