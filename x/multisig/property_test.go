package multisig

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/store"
	"github.com/iov-one/treasury/x/cash"
	"github.com/iov-one/treasury/x/token"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// command is a random engine call decoded from a single integer.
type command struct {
	op     int
	caller treasury.Address
	id     uint64
	amount uint64
	kind   AssetKind
}

var propertyOwners = []treasury.Address{ownerO, ownerA, ownerB, outside}

func decodeCommand(v int) command {
	return command{
		op:     v % 7,
		caller: propertyOwners[(v/7)%len(propertyOwners)],
		id:     uint64((v/28)%6) + 1,
		amount: uint64((v/168)%3) + 1,
		kind:   AssetKind((v / 504) % 2),
	}
}

// run applies the command. Rejected calls are expected and ignored, the
// engine must stay consistent either way. The returned error describes a
// broken rule of the call itself.
func (c command) run(f *fixture) error {
	ctx := context.Background()
	switch c.op {
	case 0:
		f.engine.Submit(ctx, c.caller, target, c.amount, c.kind)
	case 1, 2:
		f.engine.Approve(ctx, c.caller, c.id)
	case 3:
		f.engine.Revoke(ctx, c.caller, c.id)
	case 4:
		ids, _ := f.engine.ReadyIDs()
		if len(ids) > 0 {
			p, _ := f.engine.Get(ids[0])
			f.engine.ExecuteOne(ctx, c.caller, p.Amount)
		}
	case 5:
		return c.runBatch(f)
	case 6:
		// the ledger goes down or comes back
		if _, ok := f.engine.ledger.(brokenLedger); ok {
			f.engine.ledger = f.tokens
		} else {
			f.engine.ledger = brokenLedger{Ledger: f.tokens}
		}
	}
	return nil
}

// runBatch executes all ready proposals, attaching one unit too much when
// the amount is 3. The batch must execute either every ready proposal or
// none of them.
func (c command) runBatch(f *fixture) error {
	ctx := context.Background()
	before, err := f.engine.ReadyIDs()
	if err != nil {
		return err
	}
	var native uint64
	for _, id := range before {
		p, err := f.engine.Get(id)
		if err != nil {
			return err
		}
		if p.Kind == NativeCurrency {
			native += p.Amount
		}
	}
	if c.amount == 3 {
		native++
	}
	coins, tokens := f.nativeBalanceOf(target), f.tokenBalanceOf(target)

	receipts, err := f.engine.ExecuteBatch(ctx, c.caller, native)
	after, rerr := f.engine.ReadyIDs()
	if rerr != nil {
		return rerr
	}
	if err == nil {
		if len(after) != 0 {
			return fmt.Errorf("batch succeeded with %d proposals still ready", len(after))
		}
		if len(receipts) != len(before) {
			return fmt.Errorf("batch of %d proposals returned %d receipts", len(before), len(receipts))
		}
		return nil
	}
	if len(after) != len(before) {
		return fmt.Errorf("failed batch changed the ready count from %d to %d: %s", len(before), len(after), err)
	}
	for _, id := range before {
		if ok, _ := f.engine.Executed(id); ok {
			return fmt.Errorf("failed batch executed proposal %d: %s", id, err)
		}
	}
	if coins != f.nativeBalanceOf(target) || tokens != f.tokenBalanceOf(target) {
		return fmt.Errorf("failed batch paid the target: %s", err)
	}
	return nil
}

func (f *fixture) nativeBalanceOf(a treasury.Address) uint64 {
	n, _ := f.bank.Balance(f.db, a)
	return n
}

func (f *fixture) tokenBalanceOf(a treasury.Address) uint64 {
	n, _ := f.tokens.BalanceOf(f.db, a)
	return n
}

// checkInvariants returns an error describing the first broken rule.
func checkInvariants(f *fixture, threshold uint64) error {
	last, err := f.engine.LastID()
	if err != nil {
		return err
	}
	ids, err := f.engine.ReadyIDs()
	if err != nil {
		return err
	}
	count, err := f.engine.ReadyCount()
	if err != nil {
		return err
	}
	if count != uint64(len(ids)) {
		return fmt.Errorf("ready count %d, index size %d", count, len(ids))
	}
	queued := make(map[uint64]bool)
	for _, id := range ids {
		if queued[id] {
			return fmt.Errorf("proposal %d queued twice", id)
		}
		queued[id] = true
	}
	for id := uint64(1); id <= last; id++ {
		p, err := f.engine.Get(id)
		if err != nil {
			return err
		}
		want := !p.Executed && uint64(len(p.Approvals)) >= threshold
		if queued[id] != want {
			return fmt.Errorf("proposal %d: queued %v, approvals %d, executed %v", id, queued[id], len(p.Approvals), p.Executed)
		}
		for _, a := range p.Approvals {
			if ok, _ := f.engine.IsOwner(a); !ok {
				return fmt.Errorf("proposal %d approved by non owner %s", id, a)
			}
		}
	}
	return nil
}

func TestEngineInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("ready index matches proposal state", prop.ForAll(
		func(threshold int, cmds []int) string {
			f := newPropertyFixture(uint64(threshold))
			for i, v := range cmds {
				if err := decodeCommand(v).run(f); err != nil {
					return fmt.Sprintf("command #%d: %s", i, err)
				}
				if err := checkInvariants(f, uint64(threshold)); err != nil {
					return fmt.Sprintf("after command #%d: %s", i, err)
				}
			}
			return ""
		},
		gen.IntRange(1, 3),
		gen.SliceOf(gen.IntRange(0, 1007)),
	))

	properties.Property("ids are sequential and executed proposals stay executed", prop.ForAll(
		func(cmds []int) string {
			f := newPropertyFixture(1)
			var (
				lastID   uint64
				executed = make(map[uint64]bool)
			)
			for i, v := range cmds {
				if err := decodeCommand(v).run(f); err != nil {
					return fmt.Sprintf("command #%d: %s", i, err)
				}
				id, _ := f.engine.LastID()
				if id != lastID && id != lastID+1 {
					return fmt.Sprintf("after command #%d: id jumped from %d to %d", i, lastID, id)
				}
				lastID = id
				for pid := range executed {
					if ok, _ := f.engine.Executed(pid); !ok {
						return fmt.Sprintf("after command #%d: proposal %d is no longer executed", i, pid)
					}
				}
				for pid := uint64(1); pid <= lastID; pid++ {
					if ok, _ := f.engine.Executed(pid); ok {
						executed[pid] = true
					}
				}
			}
			return ""
		},
		gen.SliceOf(gen.IntRange(0, 1007)),
	))

	properties.TestingRun(t)
}

// newPropertyFixture returns an engine with owners ownerO, ownerA and ownerB,
// each holding plenty of native currency. ownerO funds token proposals. It
// cannot use testing helpers, as it runs inside a property.
func newPropertyFixture(threshold uint64) *fixture {
	db := store.MemStore()
	tokenGenesis := treasury.Options{
		"token": json.RawMessage(`{"symbol": "TRT", "minter": "` + ownerO.String() + `"}`),
	}
	if err := (token.Initializer{}).FromGenesis(tokenGenesis, db); err != nil {
		panic(err)
	}
	f := &fixture{
		db:     db,
		bank:   cash.NewController(cash.NewBucket()),
		tokens: token.NewController(),
	}
	f.engine = NewEngine(db, f.tokens, f.bank)
	ctx := context.Background()
	if err := f.engine.Initialize(ctx, ownerO, threshold); err != nil {
		panic(err)
	}
	for _, o := range []treasury.Address{ownerA, ownerB} {
		if err := f.engine.AddOwner(ctx, ownerO, o); err != nil {
			panic(err)
		}
	}
	for _, o := range []treasury.Address{ownerO, ownerA, ownerB} {
		if err := f.bank.IssueCoins(db, o, 1000000); err != nil {
			panic(err)
		}
	}
	if err := f.tokens.Mint(db, ownerO, ownerO, 1000000); err != nil {
		panic(err)
	}
	if err := f.tokens.Approve(db, ownerO, Principal, 1000000); err != nil {
		panic(err)
	}
	return f
}
