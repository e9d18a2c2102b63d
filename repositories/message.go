//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"dmchat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	AppendMessage(message domain.Message) error
	GetAllMessages() ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored form of a log record.
type diskMessage struct {
	ID               string `json:"id"`
	SenderUID        string `json:"sender_uid"`
	SenderUsername   string `json:"sender_username"`
	ReceiverUID      string `json:"receiver_uid"`
	ReceiverUsername string `json:"receiver_username"`
	Type             string `json:"type"`
	Content          string `json:"content"`
	FileName         string `json:"file_name,omitempty"`
	MimeType         string `json:"mime_type,omitempty"`
	At               int64  `json:"at"`
}

// AppendMessage persists a record in BadgerDB.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological iteration using 19-digit zero padding
//     (lexicographical order).
//  2. Keep two records appended at the same nanosecond distinct and in
//     stable log order, with the UUID as collision disconnector.
func (m MessageRepository) AppendMessage(message domain.Message) error {
	key := fmt.Sprintf("msg:%019d:%s", message.SentAt.UnixNano(), message.ID)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetAllMessages returns the whole log in append order via a prefix scan.
// There is no per-conversation index; consumers filter the full stream
// themselves (see projection).
func (m MessageRepository) GetAllMessages() ([]domain.Message, error) {
	var rawValues [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				cp := make([]byte, len(value))
				copy(cp, value)
				rawValues = append(rawValues, cp)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(rawValues))
	for _, raw := range rawValues {
		var dm diskMessage
		if err = json.Unmarshal(raw, &dm); err != nil {
			return nil, err
		}
		message, err := toMessage(dm)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:               message.ID.String(),
		SenderUID:        message.SenderUID,
		SenderUsername:   message.SenderUsername,
		ReceiverUID:      message.ReceiverUID,
		ReceiverUsername: message.ReceiverUsername,
		Type:             string(message.Type),
		Content:          message.Content,
		FileName:         message.FileName,
		MimeType:         message.MimeType,
		At:               message.SentAt.UnixNano(),
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:               parsedID,
		SenderUID:        dm.SenderUID,
		SenderUsername:   dm.SenderUsername,
		ReceiverUID:      dm.ReceiverUID,
		ReceiverUsername: dm.ReceiverUsername,
		Type:             domain.MessageType(dm.Type),
		Content:          dm.Content,
		FileName:         dm.FileName,
		MimeType:         dm.MimeType,
		SentAt:           time.Unix(0, dm.At).UTC(),
	}, nil
}
