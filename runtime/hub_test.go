package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dmchat/domain"
	"dmchat/observability"
	"dmchat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, repositories.IUserRepository) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.Default()
	messages := repositories.NewMessageRepository(db, log)
	users := repositories.NewUserRepository(db)
	return NewHub(log, messages, users, observability.NewMonitor(log), 16), users
}

func startDispatch(t *testing.T, hub *Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = NewDispatchWorker(hub, slog.Default()).Run(ctx) }()
}

type snapshotCollector struct {
	mu        sync.Mutex
	snapshots [][]domain.Message
}

func (c *snapshotCollector) collect(messages []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = append(c.snapshots, messages)
}

func (c *snapshotCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snapshots)
}

func (c *snapshotCollector) last() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return nil
	}
	return c.snapshots[len(c.snapshots)-1]
}

func Test_SubscribeAll_Delivers_Current_Log_Immediately(t *testing.T) {
	req := require.New(t)
	// No dispatch worker: the initial delivery must not depend on it
	hub, _ := newTestHub(t)

	_, err := hub.Append(context.Background(), textMessage("alice", "bob", "hello"))
	req.NoError(err)

	var collector snapshotCollector
	hub.SubscribeAll(collector.collect)

	// Initial delivery is synchronous, before any appended record
	req.Equal(1, collector.count())
	req.Len(collector.last(), 1)
	req.Equal("hello", collector.last()[0].Content)
}

func Test_Append_Redelivers_Full_Snapshot(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub(t)
	startDispatch(t, hub)

	var collector snapshotCollector
	hub.SubscribeAll(collector.collect)

	_, err := hub.Append(context.Background(), textMessage("alice", "bob", "one"))
	req.NoError(err)
	_, err = hub.Append(context.Background(), textMessage("bob", "alice", "two"))
	req.NoError(err)

	req.Eventually(func() bool { return collector.count() == 3 },
		2*time.Second, 10*time.Millisecond)
	req.Len(collector.last(), 2)
}

func Test_SubscribeAppended_Excludes_Preexisting_Records(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub(t)
	startDispatch(t, hub)

	_, err := hub.Append(context.Background(), textMessage("alice", "bob", "history"))
	req.NoError(err)

	var mu sync.Mutex
	var seen []domain.Message
	hub.SubscribeAppended(func(message domain.Message) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, message)
	})

	_, err = hub.Append(context.Background(), textMessage("bob", "alice", "fresh"))
	req.NoError(err)

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Equal("fresh", seen[0].Content)
}

func Test_Cancelled_Subscription_Receives_Nothing(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub(t)
	startDispatch(t, hub)

	var cancelled snapshotCollector
	var live snapshotCollector
	sub := hub.SubscribeAll(cancelled.collect)
	hub.SubscribeAll(live.collect)
	sub.Cancel()

	_, err := hub.Append(context.Background(), textMessage("alice", "bob", "late"))
	req.NoError(err)

	req.Eventually(func() bool { return live.count() == 2 },
		2*time.Second, 10*time.Millisecond)
	// Only the initial synchronous snapshot reached the cancelled handle
	req.Equal(1, cancelled.count())
}

func Test_RefreshDirectory_Fans_Out_Replacement_Snapshot(t *testing.T) {
	req := require.New(t)
	hub, users := newTestHub(t)
	startDispatch(t, hub)

	var mu sync.Mutex
	var snapshots []map[string]domain.User
	hub.Subscribe(func(users map[string]domain.User) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, users)
	})

	_, err := users.CreateUser("alice", "hash")
	req.NoError(err)
	hub.RefreshDirectory()

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	req.Empty(snapshots[0])
	req.Len(snapshots[1], 1)
}

func Test_Append_Generates_Id(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub(t)

	id, err := hub.Append(context.Background(), textMessage("alice", "bob", "hi"))
	req.NoError(err)
	req.NotEqual(uuid.Nil, id)
}

func textMessage(sender, receiver, content string) domain.Message {
	return domain.Message{
		SenderUID:   sender,
		ReceiverUID: receiver,
		Type:        domain.TypeText,
		Content:     content,
		SentAt:      time.Now().UTC(),
	}
}
