package runtime

import (
	"sync"
	"sync/atomic"

	"dmchat/contract"
)

// subscription is a generation-tagged, cancellable handle. Cancel flips the
// flag first, so a dispatch that already sampled the subscriber list skips
// the callback; the consumer's own generation guard covers the remaining
// in-flight window (see projection).
type subscription struct {
	id        uint64
	cancelled atomic.Bool
	remove    func(id uint64)
}

func (s *subscription) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.remove(s.id)
	}
}

type snapshotSub struct {
	*subscription
	fn contract.SnapshotFunc
}

// appendedSub remembers the log sequence it was born at; events stamped at
// or before that sequence are historical and never delivered to it.
type appendedSub struct {
	*subscription
	fn      contract.AppendedFunc
	bornSeq uint64
}

type directorySub struct {
	*subscription
	fn contract.DirectoryFunc
}

// registry holds the live subscriptions of a Hub. It only manages handles;
// delivery is the dispatcher's concern.
type registry struct {
	mu        sync.RWMutex
	nextID    uint64
	snapshot  map[uint64]*snapshotSub
	appended  map[uint64]*appendedSub
	directory map[uint64]*directorySub
}

func newRegistry() *registry {
	return &registry{
		snapshot:  make(map[uint64]*snapshotSub),
		appended:  make(map[uint64]*appendedSub),
		directory: make(map[uint64]*directorySub),
	}
}

func (r *registry) newHandle(remove func(id uint64)) *subscription {
	id := atomic.AddUint64(&r.nextID, 1)
	return &subscription{id: id, remove: remove}
}

func (r *registry) addSnapshot(fn contract.SnapshotFunc) *snapshotSub {
	sub := &snapshotSub{fn: fn}
	sub.subscription = r.newHandle(func(id uint64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.snapshot, id)
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot[sub.id] = sub
	return sub
}

func (r *registry) addAppended(fn contract.AppendedFunc, bornSeq uint64) *appendedSub {
	sub := &appendedSub{fn: fn, bornSeq: bornSeq}
	sub.subscription = r.newHandle(func(id uint64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.appended, id)
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended[sub.id] = sub
	return sub
}

func (r *registry) addDirectory(fn contract.DirectoryFunc) *directorySub {
	sub := &directorySub{fn: fn}
	sub.subscription = r.newHandle(func(id uint64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.directory, id)
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.directory[sub.id] = sub
	return sub
}

// currentSnapshotSubs returns a stable copy of the live snapshot
// subscriptions, so delivery never runs under the registry lock.
func (r *registry) currentSnapshotSubs() []*snapshotSub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]*snapshotSub, 0, len(r.snapshot))
	for _, sub := range r.snapshot {
		subs = append(subs, sub)
	}
	return subs
}

func (r *registry) currentAppendedSubs() []*appendedSub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]*appendedSub, 0, len(r.appended))
	for _, sub := range r.appended {
		subs = append(subs, sub)
	}
	return subs
}

func (r *registry) currentDirectorySubs() []*directorySub {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]*directorySub, 0, len(r.directory))
	for _, sub := range r.directory {
		subs = append(subs, sub)
	}
	return subs
}
