// Package projection builds local views from the shared stream and
// directory. It handles filtering, ordering and selection state; it never
// appends events or talks to storage directly.
package projection

import (
	"sort"

	"dmchat/domain"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ContactList derives the ordered list of conversation partners from a
// directory snapshot: everyone except the viewer and any record without a
// username, sorted by locale-aware username comparison.
type ContactList struct {
	self     domain.Identity
	collator *collate.Collator
}

func NewContactList(self domain.Identity) *ContactList {
	return &ContactList{self: self, collator: collate.New(language.Und)}
}

func (c *ContactList) Build(users map[string]domain.User) []domain.User {
	contacts := lo.Filter(lo.Values(users), func(u domain.User, _ int) bool {
		return u.UID != c.self.UID && u.Username != ""
	})
	sort.SliceStable(contacts, func(i, j int) bool {
		return c.collator.CompareString(contacts[i].Username, contacts[j].Username) < 0
	})
	return contacts
}
