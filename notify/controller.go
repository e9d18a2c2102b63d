// Package notify owns the unread/notification state machine: the unread
// counter, the decorated title and the best-effort sound and desktop alerts.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"dmchat/contract"
	"dmchat/domain"
	"dmchat/observability"
)

// AlertSound is the named sound handed to the audio facility.
const AlertSound = "notification"

const notificationIcon = "chat-icon.png"

// Controller watches newly appended records only. Historical records never
// alert, and a record rendered by the active view still counts here: the
// two observers are independent, so the alert fires exactly once.
type Controller struct {
	mu        sync.Mutex
	log       *slog.Logger
	self      domain.Identity
	notifier  contract.DesktopNotifier
	sound     contract.SoundPlayer
	monitor   *observability.Monitor
	onTitle   func(title string)
	baseTitle string
	unread    int
	visible   bool
	sub       contract.Subscription
}

func NewController(log *slog.Logger, self domain.Identity,
	notifier contract.DesktopNotifier, sound contract.SoundPlayer,
	monitor *observability.Monitor, baseTitle string,
	onTitle func(title string)) *Controller {
	return &Controller{
		log:       log,
		self:      self,
		notifier:  notifier,
		sound:     sound,
		monitor:   monitor,
		onTitle:   onTitle,
		baseTitle: baseTitle,
		visible:   true,
	}
}

// Start asks for notification permission once and subscribes to appended
// records. Pre-existing log content is excluded by the subscription itself.
func (c *Controller) Start(stream contract.EventLog) {
	if !c.notifier.PermissionGranted() {
		c.notifier.RequestPermission()
	}
	c.sub = stream.SubscribeAppended(c.handleAppended)
}

func (c *Controller) handleAppended(message domain.Message) {
	if message.ReceiverUID != c.self.UID || message.SenderUID == c.self.UID {
		return
	}

	// Fire and forget: playback failure never surfaces
	if err := c.sound.Play(AlertSound); err != nil {
		c.log.Debug("Alert sound failed", "error", err)
	}

	c.mu.Lock()
	hidden := !c.visible
	if hidden {
		c.unread++
		c.pushTitle()
	}
	c.mu.Unlock()

	if hidden && c.notifier.PermissionGranted() {
		title := fmt.Sprintf("New message from %s", message.SenderUsername)
		if err := c.notifier.Show(title, message.Summary(), notificationIcon); err != nil {
			c.log.Debug("Desktop notification failed", "error", err)
			return
		}
		c.monitor.IncrNotificationsShown()
	}
}

// SetVisible records foreground changes. Regaining the foreground resets the
// unread counter and restores the original title.
func (c *Controller) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = visible
	if visible {
		c.unread = 0
		c.pushTitle()
	}
}

// Unread returns the current unread count.
func (c *Controller) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Title returns the current decorated title.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title()
}

// title must be called with the mutex held.
func (c *Controller) title() string {
	if c.unread == 0 {
		return c.baseTitle
	}
	plural := ""
	if c.unread > 1 {
		plural = "s"
	}
	return fmt.Sprintf("(%d) New message%s - %s", c.unread, plural, c.baseTitle)
}

// pushTitle must be called with the mutex held.
func (c *Controller) pushTitle() {
	if c.onTitle != nil {
		c.onTitle(c.title())
	}
}

// Close releases the appended-records subscription.
func (c *Controller) Close() {
	if c.sub != nil {
		c.sub.Cancel()
	}
}
