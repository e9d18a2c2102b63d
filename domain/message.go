// Package domain contains core concepts of the direct-messaging system.
// This file defines Message records and their presentation rules.
// Messages are immutable once appended to the log.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	TypeText MessageType = "text"
	TypeFile MessageType = "file"
)

// Message represents one immutable record of the shared log.
// Content holds raw text for TypeText and a data-URI payload for TypeFile.
type Message struct {
	ID               uuid.UUID
	SenderUID        string
	SenderUsername   string
	ReceiverUID      string
	ReceiverUsername string
	Type             MessageType
	Content          string
	FileName         string
	MimeType         string
	SentAt           time.Time
}

func (m Message) Pair() Pair {
	return NewPair(m.SenderUID, m.ReceiverUID)
}

// Summary renders the one-line form used by sidebar previews and
// notification bodies. A file message without a name shows "Attachment".
func (m Message) Summary() string {
	if m.Type != TypeFile {
		return m.Content
	}
	name := m.FileName
	if name == "" {
		name = "Attachment"
	}
	return "[File] " + name
}

// IsImage reports whether the message is an inline-displayable attachment.
func (m Message) IsImage() bool {
	return m.Type == TypeFile && strings.HasPrefix(m.MimeType, "image/")
}
