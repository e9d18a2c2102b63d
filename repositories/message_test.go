package repositories

import (
	"log/slog"
	"testing"
	"time"

	"dmchat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Append_And_Read_Back_In_Log_Order(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default())
	at := time.Now().UTC().Truncate(time.Microsecond)
	appended := []domain.Message{
		newTextMessage("alice", "bob", "hi bob", at),
		newTextMessage("bob", "alice", "hi alice", at.Add(1*time.Minute)),
		newTextMessage("alice", "clara", "hi clara", at.Add(2*time.Minute)),
	}
	for _, m := range appended {
		req.NoError(repository.AppendMessage(m))
	}

	fetched, err := repository.GetAllMessages()
	req.NoError(err)
	req.Equal(appended, fetched)
}

func Test_Same_Timestamp_Keeps_Both_Records(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default())
	at := time.Now().UTC()
	req.NoError(repository.AppendMessage(newTextMessage("alice", "bob", "first", at)))
	req.NoError(repository.AppendMessage(newTextMessage("bob", "alice", "second", at)))

	fetched, err := repository.GetAllMessages()
	req.NoError(err)
	req.Len(fetched, 2)
}

func Test_File_Message_Round_Trip(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	repository := NewMessageRepository(db, slog.Default())
	message := domain.Message{
		ID:          uuid.New(),
		SenderUID:   "alice",
		ReceiverUID: "bob",
		Type:        domain.TypeFile,
		Content:     "data:image/png;base64,aGVsbG8=",
		FileName:    "cat.png",
		MimeType:    "image/png",
		SentAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	req.NoError(repository.AppendMessage(message))

	fetched, err := repository.GetAllMessages()
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal(message, fetched[0])
}

func newTextMessage(sender, receiver, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:          uuid.New(),
		SenderUID:   sender,
		ReceiverUID: receiver,
		Type:        domain.TypeText,
		Content:     content,
		SentAt:      at,
	}
}
