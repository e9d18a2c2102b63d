package event

import (
	"time"

	"dmchat/domain"
)

type DomainEvent interface {
	OccurredAt() time.Time
}

// MessageAppended is emitted once per record newly appended to the log,
// never for records already present at subscription time.
type MessageAppended struct {
	Message domain.Message
}

func (e MessageAppended) OccurredAt() time.Time {
	return e.Message.SentAt
}

// DirectoryUpdated carries a full replacement snapshot of the user directory.
type DirectoryUpdated struct {
	Users map[string]domain.User
	At    time.Time
}

func (e DirectoryUpdated) OccurredAt() time.Time {
	return e.At
}
