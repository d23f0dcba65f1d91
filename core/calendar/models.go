package calendar

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

var ErrNotFound = errors.New("calendar event not found")

// EventTypeExpectCompletion marks the host-scheduled reminder tied to an
// activity's expected-completion timestamp.
const EventTypeExpectCompletion = "expectcompletion"

// Event is one calendar entry owned by the host's calendar subsystem.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CourseID   string    `json:"course_id"`
	Module     string    `json:"module"` // activity module type, eg. "msteams"
	InstanceID string    `json:"instance_id"`
	EventType  string    `json:"event_type"`
	TimeStart  time.Time `json:"time_start"` // UTC
	Notified   bool      `json:"-"`          // reminder digest already sent
}

// Action is the clickable affordance the calendar UI shows for an event.
type Action struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	ItemCount  int    `json:"item_count"`
	Actionable bool   `json:"actionable"`
}

type EventRepository interface {
	CreateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
	GetEventByID(ctx context.Context, id string, exec ...core.DBExecutor) (Event, error)
	// GetModuleEvent finds the single event of a type tied to an activity instance.
	GetModuleEvent(ctx context.Context, module, instanceID, eventType string, exec ...core.DBExecutor) (Event, error)
	UpdateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
	DeleteEventsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	// QueryDueEvents returns unnotified events starting within [from, to].
	QueryDueEvents(ctx context.Context, from, to time.Time, exec ...core.DBExecutor) ([]Event, error)
	MarkEventsNotified(ctx context.Context, ids []string, exec ...core.DBExecutor) error
}
