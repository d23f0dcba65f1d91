package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
)

type eventRepository struct {
	db *eventTable
}

var _ calendar.EventRepository = (*eventRepository)(nil)

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt calendar.Event, _ ...core.DBExecutor) (calendar.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	evt.ID = uuid.New().String()
	repo.db.table[evt.ID] = &evt
	return evt, nil
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string, _ ...core.DBExecutor) (calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.table[id]; ok {
		return *evt, nil
	}
	return calendar.Event{}, calendar.ErrNotFound
}

func (repo *eventRepository) GetModuleEvent(ctx context.Context, module, instanceID, eventType string, _ ...core.DBExecutor) (calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, evt := range repo.db.table {
		if evt.Module == module && evt.InstanceID == instanceID && evt.EventType == eventType {
			return *evt, nil
		}
	}
	return calendar.Event{}, calendar.ErrNotFound
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt calendar.Event, _ ...core.DBExecutor) (calendar.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[evt.ID]
	if !ok {
		return calendar.Event{}, calendar.ErrNotFound
	}
	orig.Name = evt.Name
	orig.CourseID = evt.CourseID
	orig.TimeStart = evt.TimeStart
	orig.Notified = evt.Notified
	return *orig, nil
}

func (repo *eventRepository) DeleteEventsByID(ctx context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *eventRepository) QueryDueEvents(ctx context.Context, from, to time.Time, _ ...core.DBExecutor) ([]calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]calendar.Event, 0)
	for _, evt := range repo.db.table {
		if !evt.Notified && !evt.TimeStart.Before(from) && !evt.TimeStart.After(to) {
			events = append(events, *evt)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].TimeStart.Before(events[j].TimeStart) })
	return events, nil
}

func (repo *eventRepository) MarkEventsNotified(ctx context.Context, ids []string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, id := range ids {
		if evt, ok := repo.db.table[id]; ok {
			evt.Notified = true
		}
	}
	return nil
}
