package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
const CacheLineSize = 64

// CacheLinePad separates hot fields into distinct cache lines.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedAtomicUint64 is an atomic uint64 padded to exactly one cache line,
// so per-shard counters updated from different cores do not false-share.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

var _ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicUint64{}))]byte
