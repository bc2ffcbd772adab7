// Package notify sends desktop notifications for document events.
package notify

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/livesign/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventOpen emits a notification when a document is opened.
	EventOpen Event = "open"
	// EventSave emits a notification when a signed document is written.
	EventSave Event = "save"
	// EventCopy emits a notification when annotation text is copied.
	EventCopy Event = "copy"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "livesign",
		Events: map[Event]EventPreference{
			EventOpen: {Template: "Opened %s"},
			EventSave: {Template: "Saved %s"},
			EventCopy: {Template: "Copied %q to clipboard"},
		},
	}
}

// LoadPreferences reads overrides from LIVESIGN_NOTIFY_* environment variables.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("LIVESIGN_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	apply := func(key string, event Event) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			eventPrefs := prefs.Events[event]
			eventPrefs.Template = v
			prefs.Events[event] = eventPrefs
		}
	}
	apply("LIVESIGN_NOTIFY_OPEN_TEXT", EventOpen)
	apply("LIVESIGN_NOTIFY_SAVE_TEXT", EventSave)
	apply("LIVESIGN_NOTIFY_COPY_TEXT", EventCopy)
	return prefs
}

// SendFunc delivers one notification.
type SendFunc func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    SendFunc
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), send: platform.Notify}
}

// SetSender replaces the platform backend.
func (n *Notifier) SetSender(fn SendFunc) {
	if n != nil && fn != nil {
		n.send = fn
	}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Open sends a notification naming the opened document and its page count.
func (n *Notifier) Open(path string, pages int) {
	if !n.enabledFor(EventOpen) {
		return
	}
	detail := fmt.Sprintf("%s (%d pages)", filepath.Base(path), pages)
	if pages == 1 {
		detail = fmt.Sprintf("%s (1 page)", filepath.Base(path))
	}
	n.dispatch(EventOpen, detail, platform.Options{Urgency: platform.UrgencyLow})
}

// Save sends a save notification including the written filename when available.
func (n *Notifier) Save(path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	n.dispatch(EventSave, detail, platform.Options{Urgency: platform.UrgencyNormal})
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(text string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	n.dispatch(EventCopy, text, platform.Options{Urgency: platform.UrgencyLow})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.template(event))
	if template == "" || n.send == nil {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

func (n *Notifier) template(event Event) string {
	if pref, ok := n.prefs.Events[event]; ok {
		return pref.Template
	}
	return ""
}
