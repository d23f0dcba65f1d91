package calendar

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Scheduler maintains the module-owned calendar entries, mirroring the
// host's completion API: one expectcompletion event per activity instance.
type Scheduler struct {
	repo EventRepository
}

func NewScheduler(repo EventRepository) *Scheduler {
	return &Scheduler{repo: repo}
}

// UpdateCompletionDateEvent creates, moves or removes the completion-expected
// event for an activity instance. A zero `expected` timestamp removes any
// existing event.
func (s *Scheduler) UpdateCompletionDateEvent(ctx context.Context, module, instanceID, name, courseID string, expected time.Time) error {
	evt, err := s.repo.GetModuleEvent(ctx, module, instanceID, EventTypeExpectCompletion)
	if err != nil && errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "getting completion event")
	}
	found := err == nil

	if expected.IsZero() {
		if !found {
			return nil
		}
		if _, err := s.repo.DeleteEventsByID(ctx, []string{evt.ID}); err != nil {
			return errors.Wrap(err, "deleting completion event")
		}
		return nil
	}

	if !found {
		evt = Event{
			Name:       name,
			CourseID:   courseID,
			Module:     module,
			InstanceID: instanceID,
			EventType:  EventTypeExpectCompletion,
			TimeStart:  expected.UTC(),
		}
		if _, err := s.repo.CreateEvent(ctx, evt); err != nil {
			return errors.Wrap(err, "creating completion event")
		}
		return nil
	}

	evt.Name = name
	evt.CourseID = courseID
	evt.TimeStart = expected.UTC()
	evt.Notified = false // rescheduling re-arms the reminder
	if _, err := s.repo.UpdateEvent(ctx, evt); err != nil {
		return errors.Wrap(err, "updating completion event")
	}
	return nil
}
