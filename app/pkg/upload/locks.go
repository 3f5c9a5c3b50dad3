package upload

import "sync"

const lockStripes = 64

// sessionLocks serializes coverage bookkeeping per session inside one
// process. Blob writes happen outside the lock, so holders are short-lived.
// Striping bounds memory regardless of how many sessions are live.
type sessionLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *sessionLocks) lock(uid int64) func() {
	m := &l.stripes[uint64(uid)%lockStripes]
	m.Lock()
	return m.Unlock
}
