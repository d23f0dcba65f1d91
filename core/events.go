package core

import (
	"context"
	"time"
)

// Event names emitted by this module.
const EventCourseModuleViewed = "course_module_viewed"

// Event is a domain event handed to the host's logging/analytics observers.
// Other carries snapshots of related records taken when the event fired.
type Event struct {
	Name        string                 `json:"name"`
	ObjectTable string                 `json:"object_table"`
	ObjectID    string                 `json:"object_id"`
	CourseID    string                 `json:"course_id"`
	UserID      string                 `json:"user_id"`
	Other       map[string]interface{} `json:"other,omitempty"`
	Time        time.Time              `json:"time"` // UTC
}

type EventHandler func(ctx context.Context, evt Event) error

// EventEmitter dispatches domain events to registered observers.
type EventEmitter interface {
	Emit(ctx context.Context, evt Event)
}
