//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"dmchat/domain"

	"github.com/google/uuid"
)

// Subscription is a cancellable handle on a live feed. Cancel is synchronous:
// once it returns the handle is no longer current, and an in-flight callback
// of a cancelled handle must be a no-op.
type Subscription interface {
	Cancel()
}

type SnapshotFunc func(messages []domain.Message)
type AppendedFunc func(message domain.Message)
type DirectoryFunc func(users map[string]domain.User)

// EventLog is the append-only shared message stream.
type EventLog interface {
	// SubscribeAll delivers the full log snapshot immediately and again on
	// every append.
	SubscribeAll(fn SnapshotFunc) Subscription
	// SubscribeAppended delivers only records appended after the
	// subscription was taken, one at a time.
	SubscribeAppended(fn AppendedFunc) Subscription
	// Append persists a new record and returns its generated id.
	Append(ctx context.Context, message domain.Message) (uuid.UUID, error)
}

// UserDirectory is the shared uid -> profile mapping, observed as full
// replacement snapshots.
type UserDirectory interface {
	Subscribe(fn DirectoryFunc) Subscription
}

// SessionProvider resolves the signed-in viewer. When no identity is
// available the core must not run.
type SessionProvider interface {
	Current(ctx context.Context) (domain.Identity, error)
}

// DesktopNotifier is the best-effort desktop notification facility.
type DesktopNotifier interface {
	RequestPermission()
	PermissionGranted() bool
	Show(title, body, icon string) error
}

// SoundPlayer plays a named alert sound. Failures are ignored by callers.
type SoundPlayer interface {
	Play(sound string) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
