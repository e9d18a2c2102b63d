package projection

import (
	"log/slog"
	"sync"

	"dmchat/contract"
	"dmchat/domain"
)

// Sidebar wires directory snapshots into the contact list, the preview
// index and the auto-selection rule: when nothing is selected yet, the
// first contact in sort order becomes the active conversation.
type Sidebar struct {
	mu        sync.Mutex
	log       *slog.Logger
	contacts  *ContactList
	previews  *PreviewIndex
	view      *ConversationView
	directory contract.UserDirectory
	onChange  func(contacts []domain.User)
	current   []domain.User
	sub       contract.Subscription
}

func NewSidebar(log *slog.Logger, self domain.Identity, directory contract.UserDirectory,
	stream contract.EventLog, view *ConversationView,
	onChange func(contacts []domain.User)) *Sidebar {
	return &Sidebar{
		log:       log,
		contacts:  NewContactList(self),
		previews:  NewPreviewIndex(log, self, stream),
		view:      view,
		directory: directory,
		onChange:  onChange,
	}
}

// Start subscribes to the directory; the initial snapshot is processed
// before Start returns.
func (s *Sidebar) Start() {
	s.sub = s.directory.Subscribe(s.handle)
}

func (s *Sidebar) handle(users map[string]domain.User) {
	list := s.contacts.Build(users)
	s.previews.SetContacts(list)

	s.mu.Lock()
	s.current = list
	s.mu.Unlock()

	// An empty directory yields an empty list and no auto-selection
	if _, ok := s.view.Selected(); !ok && len(list) > 0 {
		s.view.Select(list[0])
	}
	if s.onChange != nil {
		s.onChange(list)
	}
}

// Contacts returns the current ordered contact list.
func (s *Sidebar) Contacts() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Preview returns the sidebar line for one contact.
func (s *Sidebar) Preview(uid string) string {
	return s.previews.Summary(uid)
}

// Close releases the directory subscription and all per-contact previews.
func (s *Sidebar) Close() {
	if s.sub != nil {
		s.sub.Cancel()
	}
	s.previews.Close()
}
