package multisig

import (
	"sort"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/iov-one/treasury/orm"
)

// ownerSet is the registry of principals allowed to operate the engine.
// Owners are never removed.
type ownerSet struct {
	bucket orm.ModelBucket
	seq    orm.Sequence
}

func newOwnerSet() ownerSet {
	return ownerSet{
		bucket: orm.NewModelBucket(OwnerBucketName),
		seq:    orm.NewSequence(OwnerBucketName, "pos"),
	}
}

func (s ownerSet) has(db treasury.ReadOnlyKVStore, a treasury.Address) (bool, error) {
	if len(a) == 0 {
		return false, nil
	}
	return s.bucket.Has(db, a)
}

// add puts candidate in the set. It fails with ErrInvalidPrincipal for the
// null principal and ErrDuplicate if candidate is already an owner.
func (s ownerSet) add(db treasury.KVStore, candidate treasury.Address) error {
	if err := candidate.Validate(); err != nil {
		return errors.Wrapf(ErrInvalidPrincipal, "owner: %s", err)
	}
	ok, err := s.has(db, candidate)
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrapf(errors.ErrDuplicate, "owner %s", candidate)
	}
	pos, err := s.seq.NextInt(db)
	if err != nil {
		return errors.Wrap(err, "owner position")
	}
	return s.bucket.Put(db, candidate, &owner{Position: uint64(pos)})
}

// list returns all owners in the order they joined.
func (s ownerSet) list(db treasury.ReadOnlyKVStore) ([]treasury.Address, error) {
	type entry struct {
		addr treasury.Address
		pos  uint64
	}
	var (
		o       owner
		entries []entry
	)
	err := s.bucket.Iterate(db, &o, func(key []byte) (bool, error) {
		entries = append(entries, entry{addr: append(treasury.Address{}, key...), pos: o.Position})
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	owners := make([]treasury.Address, len(entries))
	for i, e := range entries {
		owners[i] = e.addr
	}
	return owners, nil
}

// count returns the size of the owner set.
func (s ownerSet) count(db treasury.ReadOnlyKVStore) (int, error) {
	n, err := s.seq.Latest(db)
	return int(n), err
}
