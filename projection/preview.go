package projection

import (
	"log/slog"
	"sync"

	"dmchat/contract"
	"dmchat/domain"
)

// NoMessagesPreview is shown for a contact with no conversation yet.
const NoMessagesPreview = "No messages yet"

// PreviewIndex keeps, per contact, the summary of the most recent relevant
// message. Every contact holds its own full-stream subscription and rescans
// the whole snapshot on each update; nothing is shared between contacts, so
// simultaneous conversations can never corrupt each other's preview. That
// costs O(contacts x stream) per update, which is accepted at expected
// stream sizes.
type PreviewIndex struct {
	mu         sync.Mutex
	log        *slog.Logger
	self       domain.Identity
	stream     contract.EventLog
	subs       map[string]contract.Subscription
	generation map[string]uint64
	summaries  map[string]string
}

func NewPreviewIndex(log *slog.Logger, self domain.Identity, stream contract.EventLog) *PreviewIndex {
	return &PreviewIndex{
		log:        log,
		self:       self,
		stream:     stream,
		subs:       make(map[string]contract.Subscription),
		generation: make(map[string]uint64),
		summaries:  make(map[string]string),
	}
}

// SetContacts aligns the per-contact subscriptions with the current contact
// list. Dropped contacts have their subscription cancelled and generation
// bumped first, so a stale in-flight callback cannot resurrect a preview.
func (p *PreviewIndex) SetContacts(contacts []domain.User) {
	wanted := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		wanted[c.UID] = struct{}{}
	}

	p.mu.Lock()
	var stale []contract.Subscription
	for uid, sub := range p.subs {
		if _, ok := wanted[uid]; ok {
			continue
		}
		p.generation[uid]++
		stale = append(stale, sub)
		delete(p.subs, uid)
		delete(p.summaries, uid)
	}
	var fresh []string
	for uid := range wanted {
		if _, ok := p.subs[uid]; !ok {
			p.generation[uid]++
			fresh = append(fresh, uid)
		}
	}
	p.mu.Unlock()

	for _, sub := range stale {
		sub.Cancel()
	}
	for _, uid := range fresh {
		p.subscribe(uid)
	}
}

func (p *PreviewIndex) subscribe(uid string) {
	p.mu.Lock()
	gen := p.generation[uid]
	p.mu.Unlock()

	pair := domain.NewPair(p.self.UID, uid)
	sub := p.stream.SubscribeAll(func(snapshot []domain.Message) {
		summary := NoMessagesPreview
		if latest, ok := LatestRelevant(pair, snapshot); ok {
			summary = latest.Summary()
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.generation[uid] != gen {
			// Superseded subscription, ignore
			return
		}
		p.summaries[uid] = summary
	})

	p.mu.Lock()
	if p.generation[uid] == gen {
		p.subs[uid] = sub
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	sub.Cancel()
}

// Summary returns the current preview line for a contact.
func (p *PreviewIndex) Summary(uid string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.summaries[uid]; ok {
		return s
	}
	return NoMessagesPreview
}

// Close cancels every per-contact subscription.
func (p *PreviewIndex) Close() {
	p.mu.Lock()
	subs := make([]contract.Subscription, 0, len(p.subs))
	for uid, sub := range p.subs {
		p.generation[uid]++
		subs = append(subs, sub)
	}
	p.subs = make(map[string]contract.Subscription)
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}
