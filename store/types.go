package store

import "github.com/iov-one/hlwallet"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = hlwallet.ReadOnlyKVStore
type SetDeleter = hlwallet.SetDeleter
type KVStore = hlwallet.KVStore
type Batch = hlwallet.Batch
type Iterator = hlwallet.Iterator
type CacheableKVStore = hlwallet.CacheableKVStore
type KVCacheWrap = hlwallet.KVCacheWrap
type CommitKVStore = hlwallet.CommitKVStore
type CommitID = hlwallet.CommitID
