package projection

import (
	"log/slog"
	"testing"

	"dmchat/domain"

	"github.com/stretchr/testify/require"
)

func TestSidebar_Auto_Selects_First_Contact(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	directory := newFakeDirectory()
	self := domain.Identity{UID: "me", Username: "Me"}
	view := NewConversationView(slog.Default(), self, stream, nil)

	directory.users = map[string]domain.User{
		"me":    {UID: "me", Username: "Me"},
		"bob":   {UID: "bob", Username: "bob"},
		"alice": {UID: "alice", Username: "alice"},
	}

	sidebar := NewSidebar(slog.Default(), self, directory, stream, view, nil)
	sidebar.Start()

	selected, ok := view.Selected()
	req.True(ok)
	req.Equal("alice", selected.UID)
	req.Len(sidebar.Contacts(), 2)
}

func TestSidebar_Empty_Directory_Selects_Nothing(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	directory := newFakeDirectory()
	self := domain.Identity{UID: "me"}
	view := NewConversationView(slog.Default(), self, stream, nil)

	sidebar := NewSidebar(slog.Default(), self, directory, stream, view, nil)
	sidebar.Start()

	_, ok := view.Selected()
	req.False(ok)
	req.Empty(sidebar.Contacts())
}

func TestSidebar_Keeps_Existing_Selection(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	directory := newFakeDirectory()
	self := domain.Identity{UID: "me"}
	view := NewConversationView(slog.Default(), self, stream, nil)

	directory.users = map[string]domain.User{
		"bob": {UID: "bob", Username: "bob"},
	}
	sidebar := NewSidebar(slog.Default(), self, directory, stream, view, nil)
	sidebar.Start()

	// A new contact sorting first must not steal the selection
	directory.Push(map[string]domain.User{
		"bob":   {UID: "bob", Username: "bob"},
		"alice": {UID: "alice", Username: "alice"},
	})

	selected, ok := view.Selected()
	req.True(ok)
	req.Equal("bob", selected.UID)
	req.Len(sidebar.Contacts(), 2)
}

func TestSidebar_Username_Change_Propagates(t *testing.T) {
	req := require.New(t)
	stream := newFakeStream()
	directory := newFakeDirectory()
	self := domain.Identity{UID: "me"}
	view := NewConversationView(slog.Default(), self, stream, nil)

	var changes int
	sidebar := NewSidebar(slog.Default(), self, directory, stream, view,
		func(_ []domain.User) { changes++ })
	sidebar.Start()

	directory.Push(map[string]domain.User{
		"bob": {UID: "bob", Username: "Bobby"},
	})

	req.Equal(2, changes)
	req.Equal("Bobby", sidebar.Contacts()[0].Username)
}
