package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

type instanceRepository struct {
	db *sqlx.DB
}

var _ msteams.Repository = (*instanceRepository)(nil) // interface compliance check

func NewInstanceRepository(db *sqlx.DB) *instanceRepository {
	return &instanceRepository{db: db}
}

type instanceRow struct {
	ID                 string      `db:"id"`
	CourseID           string      `db:"course_id"`
	CourseModuleID     string      `db:"course_module_id"`
	Name               string      `db:"name"`
	Intro              null.String `db:"intro"`
	IntroFormat        null.Int    `db:"intro_format"`
	ExternalURL        string      `db:"external_url"`
	CompletionExpected null.Time   `db:"completion_expected"`
	TimeModified       null.Time   `db:"time_modified"`
}

func (repo instanceRepository) pack(inst msteams.Instance) instanceRow {
	return instanceRow{
		ID:                 inst.ID,
		CourseID:           inst.CourseID,
		CourseModuleID:     inst.CourseModuleID,
		Name:               inst.Name,
		Intro:              null.NewString(inst.Intro, inst.Intro != ""),
		IntroFormat:        null.IntFrom(inst.IntroFormat),
		ExternalURL:        inst.ExternalURL,
		CompletionExpected: null.NewTime(inst.CompletionExpected.UTC(), !inst.CompletionExpected.IsZero()),
		TimeModified:       null.NewTime(inst.TimeModified.UTC(), !inst.TimeModified.IsZero()),
	}
}

func (repo instanceRepository) unpack(row instanceRow) msteams.Instance {
	return msteams.Instance{
		ID:                 row.ID,
		CourseID:           row.CourseID,
		CourseModuleID:     row.CourseModuleID,
		Name:               row.Name,
		Intro:              row.Intro.String,
		IntroFormat:        row.IntroFormat.Int,
		ExternalURL:        row.ExternalURL,
		CompletionExpected: row.CompletionExpected.Time,
		TimeModified:       row.TimeModified.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to msteams.ErrNotFound
func (repo instanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return msteams.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo instanceRepository) CreateInstance(ctx context.Context, inst msteams.Instance, exec ...core.DBExecutor) (msteams.Instance, error) {
	inst.ID = uuid.New().String()
	row := repo.pack(inst)

	_, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		INSERT INTO msteams (id, course_id, course_module_id, name, intro, intro_format, external_url, completion_expected, time_modified)
		VALUES (:id, :course_id, :course_module_id, :name, :intro, :intro_format, :external_url, :completion_expected, :time_modified)`,
		row,
	)
	if err != nil {
		return msteams.Instance{}, errors.Wrap(err, "inserting instance")
	}
	return repo.unpack(row), nil
}

func (repo instanceRepository) GetInstanceByID(ctx context.Context, id string, exec ...core.DBExecutor) (msteams.Instance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return msteams.Instance{}, msteams.ErrNotFound
	}

	var row instanceRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, "SELECT * FROM msteams WHERE id = $1", id)
	if err != nil {
		return msteams.Instance{}, repo.trapNoRowsErr(err, "finding instance by ID")
	}
	return repo.unpack(row), nil
}

func (repo instanceRepository) GetInstanceByCourseModule(ctx context.Context, cmID string, exec ...core.DBExecutor) (msteams.Instance, error) {
	if _, err := uuid.Parse(cmID); err != nil {
		return msteams.Instance{}, msteams.ErrNotFound
	}

	var row instanceRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, "SELECT * FROM msteams WHERE course_module_id = $1", cmID)
	if err != nil {
		return msteams.Instance{}, repo.trapNoRowsErr(err, "finding instance by course module")
	}
	return repo.unpack(row), nil
}

func (repo instanceRepository) QueryCourseInstances(ctx context.Context, courseID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]msteams.Instance, error) {
	query := "SELECT * FROM msteams WHERE course_id = $1"
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	var rows []instanceRow
	if err := sqlx.SelectContext(ctx, getExec(repo.db, exec), &rows, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying instances")
	}

	instances := make([]msteams.Instance, 0, len(rows))
	for _, row := range rows {
		instances = append(instances, repo.unpack(row))
	}
	return instances, nil
}

func (repo instanceRepository) UpdateInstance(ctx context.Context, inst msteams.Instance, exec ...core.DBExecutor) (msteams.Instance, error) {
	row := repo.pack(inst)

	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		UPDATE msteams
		SET name = :name, intro = :intro, intro_format = :intro_format, external_url = :external_url,
		    completion_expected = :completion_expected, time_modified = :time_modified
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return msteams.Instance{}, errors.Wrap(err, "updating instance")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return msteams.Instance{}, msteams.ErrNotFound
	}
	return repo.unpack(row), nil
}

func (repo instanceRepository) DeleteInstancesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	query, args, err := sqlx.In("DELETE FROM msteams WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "deleting instances")
	}

	e := getExec(repo.db, exec)
	res, err := e.ExecContext(ctx, e.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting instances")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting instances")
	}
	return int(cnt), nil
}
