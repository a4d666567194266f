package voice

import (
	"time"

	"github.com/google/uuid"
)

// Event is one entry on the voice queue. Events are values and are never
// modified after they are produced.
type Event struct {
	ID         string
	Trigger    Trigger
	Text       string
	EnqueuedAt time.Time
}

// NewEvent creates an event for a vocabulary trigger.
func NewEvent(t Trigger) Event {
	return Event{
		ID:         uuid.New().String(),
		Trigger:    t,
		EnqueuedAt: time.Now(),
	}
}

// NewTextEvent creates a free-form event for NLU mode.
func NewTextEvent(text string) Event {
	return Event{
		ID:         uuid.New().String(),
		Text:       text,
		EnqueuedAt: time.Now(),
	}
}

// Utterance is the text handed to the intent resolver. Trigger events are
// sent by name.
func (e Event) Utterance() string {
	if e.Text != "" {
		return e.Text
	}
	return string(e.Trigger)
}
