package orm

import (
	"regexp"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// NewModelBucket returns a ModelBucket that keeps all its entities under the
// "<name>:" key prefix.
func NewModelBucket(name string) ModelBucket {
	if !isBucketName(name) {
		panic("illegal bucket name: " + name)
	}
	return &modelBucket{
		prefix: []byte(name + ":"),
	}
}

type modelBucket struct {
	prefix []byte
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	return append(append([]byte{}, mb.prefix...), key...)
}

func (mb *modelBucket) One(db treasury.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "cannot load from the database")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the store", dest)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot unmarshal %T", dest)
	}
	return nil
}

func (mb *modelBucket) Has(db treasury.ReadOnlyKVStore, key []byte) (bool, error) {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return false, errors.Wrap(err, "cannot query the database")
	}
	return ok, nil
}

func (mb *modelBucket) Put(db treasury.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "cannot marshal %T", m)
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db treasury.KVStore, key []byte) error {
	ok, err := mb.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotFound
	}
	return db.Delete(mb.dbKey(key))
}

func (mb *modelBucket) Keys(db treasury.ReadOnlyKVStore) ([][]byte, error) {
	var keys [][]byte
	err := mb.walk(db, func(key, _ []byte) (bool, error) {
		keys = append(keys, key)
		return true, nil
	})
	return keys, err
}

func (mb *modelBucket) Iterate(db treasury.ReadOnlyKVStore, dest Model, fn func(key []byte) (bool, error)) error {
	return mb.walk(db, func(key, raw []byte) (bool, error) {
		if err := dest.Unmarshal(raw); err != nil {
			return false, errors.Wrapf(err, "cannot unmarshal %T", dest)
		}
		return fn(key)
	})
}

func (mb *modelBucket) walk(db treasury.ReadOnlyKVStore, fn func(key, raw []byte) (bool, error)) error {
	it, err := db.Iterator(mb.prefix, PrefixEnd(mb.prefix))
	if err != nil {
		return errors.Wrap(err, "cannot iterate")
	}
	defer it.Release()

	for {
		k, v, err := it.Next()
		switch {
		case err == nil:
			next, err := fn(k[len(mb.prefix):], v)
			if err != nil || !next {
				return err
			}
		case errors.ErrIteratorDone.Is(err):
			return nil
		default:
			return err
		}
	}
}

// PrefixEnd returns the smallest key that is greater than all keys starting
// with given prefix, or nil if there is no such key.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
