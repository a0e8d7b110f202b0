package orm

import "github.com/iov-one/treasury"

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
//
// As with Marshaller, this may do internal validation on the data
// and errors should be expected.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Persistent
	Validate() error
}

// ModelBucket is implemented by buckets that operates on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	One(db treasury.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns true if an entity with given key exists.
	Has(db treasury.ReadOnlyKVStore, key []byte) (bool, error)

	// Put saves given model in the database. The model is validated
	// before being written.
	Put(db treasury.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db treasury.KVStore, key []byte) error

	// Keys returns the primary keys of all stored entities in ascending
	// order.
	Keys(db treasury.ReadOnlyKVStore) ([][]byte, error)

	// Iterate loads every stored entity into dest, in ascending primary key
	// order, and calls fn with its key. Iteration stops when fn returns
	// false or an error.
	Iterate(db treasury.ReadOnlyKVStore, dest Model, fn func(key []byte) (bool, error)) error
}
