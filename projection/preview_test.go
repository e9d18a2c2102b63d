package projection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"dmchat/domain"

	"github.com/stretchr/testify/require"
)

func TestPreviewIndex_Shows_Latest_Relevant_Message(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	self := domain.Identity{UID: "me", Username: "Me"}
	index := NewPreviewIndex(slog.Default(), self, stream)

	index.SetContacts([]domain.User{{UID: "bob", Username: "Bob"}})
	req.Equal(NoMessagesPreview, index.Summary("bob"))

	_, err := stream.Append(context.Background(), msg("me", "bob", "first", at(1)))
	req.NoError(err)
	_, err = stream.Append(context.Background(), msg("bob", "me", "second", at(2)))
	req.NoError(err)

	req.Equal("second", index.Summary("bob"))
}

func TestPreviewIndex_File_Message_Summary(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	self := domain.Identity{UID: "me"}
	index := NewPreviewIndex(slog.Default(), self, stream)
	index.SetContacts([]domain.User{{UID: "bob", Username: "Bob"}})

	file := msg("bob", "me", "data:application/pdf;base64,AAAA", at(1))
	file.Type = domain.TypeFile
	file.FileName = "report.pdf"
	_, err := stream.Append(context.Background(), file)
	req.NoError(err)

	req.Equal("[File] report.pdf", index.Summary("bob"))
}

func TestPreviewIndex_Contacts_Do_Not_Share_State(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	self := domain.Identity{UID: "me"}
	index := NewPreviewIndex(slog.Default(), self, stream)
	index.SetContacts([]domain.User{
		{UID: "bob", Username: "Bob"},
		{UID: "clara", Username: "Clara"},
	})

	_, err := stream.Append(context.Background(), msg("me", "bob", "for bob", at(1)))
	req.NoError(err)
	_, err = stream.Append(context.Background(), msg("clara", "me", "for clara", at(2)))
	req.NoError(err)

	req.Equal("for bob", index.Summary("bob"))
	req.Equal("for clara", index.Summary("clara"))
}

func TestPreviewIndex_Removed_Contact_Is_Released(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	self := domain.Identity{UID: "me"}
	index := NewPreviewIndex(slog.Default(), self, stream)

	index.SetContacts([]domain.User{{UID: "bob", Username: "Bob"}})
	req.Equal(1, stream.liveSubs())

	index.SetContacts(nil)
	req.Equal(0, stream.liveSubs())
	req.Equal(NoMessagesPreview, index.Summary("bob"))
}

func TestPreviewIndex_Close_Cancels_Everything(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	index := NewPreviewIndex(slog.Default(), domain.Identity{UID: "me"}, stream)
	index.SetContacts([]domain.User{
		{UID: "bob", Username: "Bob"},
		{UID: "clara", Username: "Clara"},
	})
	req.Equal(2, stream.liveSubs())

	index.Close()
	req.Equal(0, stream.liveSubs())
}

func TestPreviewIndex_Tie_Keeps_Log_Order(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	index := NewPreviewIndex(slog.Default(), domain.Identity{UID: "me"}, stream)
	index.SetContacts([]domain.User{{UID: "bob", Username: "Bob"}})

	same := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	_, err := stream.Append(context.Background(), msg("me", "bob", "first in log", same))
	req.NoError(err)
	_, err = stream.Append(context.Background(), msg("bob", "me", "second in log", same))
	req.NoError(err)

	req.Equal("first in log", index.Summary("bob"))
}
