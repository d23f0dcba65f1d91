package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
)

type eventRepository struct {
	db *sqlx.DB
}

var _ calendar.EventRepository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) *eventRepository {
	return &eventRepository{db: db}
}

type eventRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"name"`
	CourseID   null.String `db:"course_id"`
	Module     string      `db:"module"`
	InstanceID string      `db:"instance_id"`
	EventType  string      `db:"event_type"`
	TimeStart  time.Time   `db:"time_start"`
	Notified   bool        `db:"notified"`
}

func (repo eventRepository) pack(evt calendar.Event) eventRow {
	return eventRow{
		ID:         evt.ID,
		Name:       evt.Name,
		CourseID:   null.NewString(evt.CourseID, evt.CourseID != ""),
		Module:     evt.Module,
		InstanceID: evt.InstanceID,
		EventType:  evt.EventType,
		TimeStart:  evt.TimeStart.UTC(),
		Notified:   evt.Notified,
	}
}

func (repo eventRepository) unpack(row eventRow) calendar.Event {
	return calendar.Event{
		ID:         row.ID,
		Name:       row.Name,
		CourseID:   row.CourseID.String,
		Module:     row.Module,
		InstanceID: row.InstanceID,
		EventType:  row.EventType,
		TimeStart:  row.TimeStart,
		Notified:   row.Notified,
	}
}

// trapNoRowsErr maps psql "no rows" err to calendar.ErrNotFound
func (repo eventRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return calendar.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo eventRepository) CreateEvent(ctx context.Context, evt calendar.Event, exec ...core.DBExecutor) (calendar.Event, error) {
	evt.ID = uuid.New().String()
	row := repo.pack(evt)

	_, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		INSERT INTO event (id, name, course_id, module, instance_id, event_type, time_start, notified)
		VALUES (:id, :name, :course_id, :module, :instance_id, :event_type, :time_start, :notified)`,
		row,
	)
	if err != nil {
		return calendar.Event{}, errors.Wrap(err, "inserting event")
	}
	return repo.unpack(row), nil
}

func (repo eventRepository) GetEventByID(ctx context.Context, id string, exec ...core.DBExecutor) (calendar.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return calendar.Event{}, calendar.ErrNotFound
	}

	var row eventRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, "SELECT * FROM event WHERE id = $1", id)
	if err != nil {
		return calendar.Event{}, repo.trapNoRowsErr(err, "finding event by ID")
	}
	return repo.unpack(row), nil
}

func (repo eventRepository) GetModuleEvent(ctx context.Context, module, instanceID, eventType string, exec ...core.DBExecutor) (calendar.Event, error) {
	var row eventRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row,
		"SELECT * FROM event WHERE module = $1 AND instance_id = $2 AND event_type = $3",
		module, instanceID, eventType)
	if err != nil {
		return calendar.Event{}, repo.trapNoRowsErr(err, "finding module event")
	}
	return repo.unpack(row), nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, evt calendar.Event, exec ...core.DBExecutor) (calendar.Event, error) {
	row := repo.pack(evt)

	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		UPDATE event
		SET name = :name, course_id = :course_id, time_start = :time_start, notified = :notified
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return calendar.Event{}, errors.Wrap(err, "updating event")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return calendar.Event{}, calendar.ErrNotFound
	}
	return repo.unpack(row), nil
}

func (repo eventRepository) DeleteEventsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	query, args, err := sqlx.In("DELETE FROM event WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting events")
	}

	e := getExec(repo.db, exec)
	res, err := e.ExecContext(ctx, e.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting events")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting events")
	}
	return int(cnt), nil
}

func (repo eventRepository) QueryDueEvents(ctx context.Context, from, to time.Time, exec ...core.DBExecutor) ([]calendar.Event, error) {
	var rows []eventRow
	err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows,
		"SELECT * FROM event WHERE NOT notified AND time_start >= $1 AND time_start <= $2 ORDER BY time_start",
		from.UTC(), to.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "querying due events")
	}

	events := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, repo.unpack(row))
	}
	return events, nil
}

func (repo eventRepository) MarkEventsNotified(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("UPDATE event SET notified = TRUE WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "marking events notified")
	}

	e := getExec(repo.db, exec)
	if _, err = e.ExecContext(ctx, e.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "marking events notified")
	}
	return nil
}
