package projection

import (
	"context"
	"sync"

	"dmchat/contract"
	"dmchat/domain"

	"github.com/google/uuid"
)

// fakeStream is a synchronous in-memory stand-in for the event log client:
// every append immediately redelivers the full snapshot to all live
// subscriptions, on the caller's goroutine.
type fakeStream struct {
	mu     sync.Mutex
	log    []domain.Message
	nextID int
	subs   map[int]contract.SnapshotFunc
}

func newFakeStream() *fakeStream {
	return &fakeStream{subs: make(map[int]contract.SnapshotFunc)}
}

type fakeSub struct {
	cancel func()
}

func (s *fakeSub) Cancel() { s.cancel() }

func (f *fakeStream) SubscribeAll(fn contract.SnapshotFunc) contract.Subscription {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs[id] = fn
	snapshot := append([]domain.Message(nil), f.log...)
	f.mu.Unlock()

	fn(snapshot)
	return &fakeSub{cancel: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}}
}

func (f *fakeStream) SubscribeAppended(fn contract.AppendedFunc) contract.Subscription {
	return &fakeSub{cancel: func() {}}
}

func (f *fakeStream) Append(_ context.Context, message domain.Message) (uuid.UUID, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	f.mu.Lock()
	f.log = append(f.log, message)
	snapshot := append([]domain.Message(nil), f.log...)
	fns := make([]contract.SnapshotFunc, 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(append([]domain.Message(nil), snapshot...))
	}
	return message.ID, nil
}

func (f *fakeStream) liveSubs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// fakeDirectory replays full replacement snapshots to its subscribers.
type fakeDirectory struct {
	mu    sync.Mutex
	users map[string]domain.User
	subs  []contract.DirectoryFunc
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[string]domain.User)}
}

func (f *fakeDirectory) Subscribe(fn contract.DirectoryFunc) contract.Subscription {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	snapshot := cloneUsers(f.users)
	f.mu.Unlock()

	fn(snapshot)
	return &fakeSub{cancel: func() {}}
}

func (f *fakeDirectory) Push(users map[string]domain.User) {
	f.mu.Lock()
	f.users = users
	fns := append([]contract.DirectoryFunc(nil), f.subs...)
	f.mu.Unlock()

	for _, fn := range fns {
		fn(cloneUsers(users))
	}
}

func cloneUsers(users map[string]domain.User) map[string]domain.User {
	out := make(map[string]domain.User, len(users))
	for k, v := range users {
		out[k] = v
	}
	return out
}
