// this code is from https://github.com/pzhzqt/goostub
// there is license and copyright notice in licenses/goostub dir

package common

const (
	// size of a data page in byte
	PageSize = 4096
	// default maximum number of key/value pairs held by one extendible hash bucket
	DefaultBucketSize = 50
	// default K used by the LRU-K replacer when a buffer pool is constructed
	// without an explicit override
	DefaultLRUK = 2
)

// EnableDebug turns on verbose buffer pool tracing via the logger in logger.go.
var EnableDebug = false
