// Package composer turns user input into immutable log records.
// It is the only writer of the shared event log in this process.
package composer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"dmchat/contract"
	"dmchat/domain"
	"dmchat/errors"
	"dmchat/moderation"
)

// MaxAttachmentSize is the hard limit for inline file payloads.
const MaxAttachmentSize = 3 << 20

// TargetProvider exposes the currently open conversation, if any.
type TargetProvider interface {
	Selected() (domain.User, bool)
}

// outgoing is validated before any record reaches the log.
type outgoing struct {
	SenderUID   string `validate:"required"`
	ReceiverUID string `validate:"required"`
	Content     string `validate:"required"`
}

type Composer struct {
	log       *slog.Logger
	self      domain.Identity
	stream    contract.EventLog
	target    TargetProvider
	moderator *moderation.Moderator
	validate  *validator.Validate
}

func NewComposer(log *slog.Logger, self domain.Identity, stream contract.EventLog,
	target TargetProvider, moderator *moderation.Moderator) *Composer {
	return &Composer{
		log:       log,
		self:      self,
		stream:    stream,
		target:    target,
		moderator: moderator,
		validate:  validator.New(),
	}
}

// SendText appends one text record to the open conversation. Blank input is
// ignored without error, matching the behaviour of submitting an empty field.
func (c *Composer) SendText(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	contact, ok := c.target.Selected()
	if !ok {
		return errors.ErrNoChatSelected
	}

	if c.moderator != nil {
		censored, found := c.moderator.Censor(trimmed)
		if len(found) > 0 {
			c.log.Debug("censored outgoing message", "words", found)
		}
		trimmed = censored
	}

	info := whatlanggo.Detect(trimmed)
	c.log.Debug("sending text message",
		"receiver", contact.UID,
		"lang", info.Lang.String(),
	)

	message := c.newMessage(contact)
	message.Type = domain.TypeText
	message.Content = trimmed

	return c.append(ctx, message)
}

// SendFile appends one file record carrying the payload inline as a data URI.
// The declared mime type wins when present, otherwise content sniffing decides.
func (c *Composer) SendFile(ctx context.Context, name string, data []byte, declaredMime string) error {
	if len(data) > MaxAttachmentSize {
		return fmt.Errorf("%w: %s is %d bytes", errors.ErrAttachmentTooLarge, name, len(data))
	}

	contact, ok := c.target.Selected()
	if !ok {
		return errors.ErrNoChatSelected
	}

	mime := declaredMime
	if mime == "" {
		mime = mimetype.Detect(data).String()
	}

	message := c.newMessage(contact)
	message.Type = domain.TypeFile
	message.FileName = name
	message.MimeType = mime
	message.Content = fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	c.log.Debug("sending file message",
		"receiver", contact.UID,
		"name", name,
		"mime", mime,
		"size", len(data),
	)

	return c.append(ctx, message)
}

func (c *Composer) newMessage(contact domain.User) domain.Message {
	return domain.Message{
		SenderUID:        c.self.UID,
		SenderUsername:   c.self.Username,
		ReceiverUID:      contact.UID,
		ReceiverUsername: contact.Username,
		SentAt:           time.Now(),
	}
}

func (c *Composer) append(ctx context.Context, message domain.Message) error {
	payload := outgoing{
		SenderUID:   message.SenderUID,
		ReceiverUID: message.ReceiverUID,
		Content:     message.Content,
	}
	if err := c.validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	id, err := c.stream.Append(ctx, message)
	if err != nil {
		return err
	}

	c.log.Debug("message appended", "id", id.String())
	return nil
}
