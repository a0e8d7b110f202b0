package store

import "github.com/iov-one/treasury"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = treasury.ReadOnlyKVStore
type SetDeleter = treasury.SetDeleter
type KVStore = treasury.KVStore
type Batch = treasury.Batch
type Iterator = treasury.Iterator
type CacheableKVStore = treasury.CacheableKVStore
type KVCacheWrap = treasury.KVCacheWrap
type CommitKVStore = treasury.CommitKVStore
type CommitID = treasury.CommitID
