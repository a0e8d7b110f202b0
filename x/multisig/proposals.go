package multisig

import (
	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/orm"
)

// proposalStore keeps the proposals by their sequential id. Proposals are
// never deleted.
type proposalStore struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

func newProposalStore() proposalStore {
	return proposalStore{
		bucket: orm.NewModelBucket(ProposalBucketName),
		seq:    orm.NewSequence(ProposalBucketName, "id"),
	}
}

// create assigns the next id to p and saves it. The caller validates p
// first, so that a rejected proposal never takes an id.
func (s proposalStore) create(db treasury.KVStore, p *Proposal) error {
	id, err := s.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "cannot acquire id")
	}
	p.ID = uint64(id)
	return s.save(db, p)
}

func (s proposalStore) save(db treasury.KVStore, p *Proposal) error {
	return s.bucket.Put(db, orm.EncodeSequence(int64(p.ID)), p)
}

func (s proposalStore) get(db treasury.ReadOnlyKVStore, id uint64) (*Proposal, error) {
	var p Proposal
	if err := s.bucket.One(db, orm.EncodeSequence(int64(id)), &p); err != nil {
		return nil, errors.Wrapf(err, "proposal %d", id)
	}
	return &p, nil
}

// latest returns the highest id assigned so far.
func (s proposalStore) latest(db treasury.ReadOnlyKVStore) (uint64, error) {
	n, err := s.seq.Latest(db)
	return uint64(n), err
}
