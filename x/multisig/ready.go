package multisig

import (
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/orm"
)

const readyCountKey = "_msig:ready_count"

// readyIndex is the first in, first out queue of proposals that reached the
// threshold and were not executed yet. Entries are keyed by an ever growing
// position, so that iteration order is the order in which proposals became
// ready. Every proposal remembers its position, which allows removing it
// without a scan.
type readyIndex struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

func newReadyIndex() readyIndex {
	return readyIndex{
		bucket: orm.NewModelBucket(ReadyBucketName),
		seq:    orm.NewSequence(ReadyBucketName, "pos"),
	}
}

// push appends the proposal to the queue. It is a no-op for a proposal that
// is already queued. The caller must save the proposal.
func (r readyIndex) push(db treasury.KVStore, p *Proposal) error {
	if p.ReadyPos != 0 {
		return nil
	}
	pos, err := r.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "ready position")
	}
	if err := r.bucket.Put(db, orm.EncodeSequence(pos), &readyEntry{ProposalID: p.ID}); err != nil {
		return err
	}
	p.ReadyPos = uint64(pos)
	return r.add(db, 1)
}

// remove takes the proposal out of the queue. It is a no-op for a proposal
// that is not queued. The caller must save the proposal.
func (r readyIndex) remove(db treasury.KVStore, p *Proposal) error {
	if p.ReadyPos == 0 {
		return nil
	}
	if err := r.bucket.Delete(db, orm.EncodeSequence(int64(p.ReadyPos))); err != nil {
		return errors.Wrapf(err, "ready entry of proposal %d", p.ID)
	}
	p.ReadyPos = 0
	return r.add(db, -1)
}

// oldest returns the id of the proposal at the head of the queue. It fails
// with ErrNoReadyTransaction if the queue is empty.
func (r readyIndex) oldest(db treasury.ReadOnlyKVStore) (uint64, error) {
	var (
		e     readyEntry
		found bool
	)
	err := r.bucket.Iterate(db, &e, func([]byte) (bool, error) {
		found = true
		return false, nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errors.Wrap(ErrNoReadyTransaction, "ready index is empty")
	}
	return e.ProposalID, nil
}

// ids returns all queued proposal ids, oldest first.
func (r readyIndex) ids(db treasury.ReadOnlyKVStore) ([]uint64, error) {
	var (
		e   readyEntry
		ids []uint64
	)
	err := r.bucket.Iterate(db, &e, func([]byte) (bool, error) {
		ids = append(ids, e.ProposalID)
		return true, nil
	})
	return ids, err
}

// count returns the number of queued proposals without iterating.
func (r readyIndex) count(db treasury.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get([]byte(readyCountKey))
	if err != nil {
		return 0, err
	}
	n, err := orm.DecodeSequence(raw)
	return uint64(n), err
}

func (r readyIndex) add(db treasury.KVStore, delta int64) error {
	n, err := r.count(db)
	if err != nil {
		return err
	}
	next := int64(n) + delta
	if next < 0 {
		return errors.Wrap(errors.ErrInvalidState, "negative ready count")
	}
	return db.Set([]byte(readyCountKey), orm.EncodeSequence(next))
}
