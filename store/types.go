package store

import "github.com/iov-one/lockswap"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = lockswap.ReadOnlyKVStore
	SetDeleter       = lockswap.SetDeleter
	KVStore          = lockswap.KVStore
	Batch            = lockswap.Batch
	Iterator         = lockswap.Iterator
	CacheableKVStore = lockswap.CacheableKVStore
	KVCacheWrap      = lockswap.KVCacheWrap
	CommitKVStore    = lockswap.CommitKVStore
	CommitID         = lockswap.CommitID
	Model            = lockswap.Model
)

// Pair constructs a model from a key-value pair
var Pair = lockswap.Pair
