// Copyright 2019 Andy Pan & Dietoad. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package spinlock

import (
	"runtime"
	"sync/atomic"
)

// Mutex is a CAS spinlock for very short critical sections.
type Mutex uint32

const maxBackoff = 16

// Lock acquires the lock, spinning with exponential backoff.
func (m *Mutex) Lock() {
	backoff := 1
	for !atomic.CompareAndSwapUint32((*uint32)(m), 0, 1) {
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < maxBackoff {
			backoff <<= 1
		}
	}
}

// TryLock acquires the lock if it is free.
func (m *Mutex) TryLock() bool {
	return atomic.CompareAndSwapUint32((*uint32)(m), 0, 1)
}

// Unlock releases the lock.
func (m *Mutex) Unlock() {
	atomic.StoreUint32((*uint32)(m), 0)
}
