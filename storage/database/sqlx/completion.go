package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
)

type completionRepository struct {
	db *sqlx.DB
}

var _ course.CompletionRepository = (*completionRepository)(nil) // interface compliance check

func NewCompletionRepository(db *sqlx.DB) *completionRepository {
	return &completionRepository{db: db}
}

func (repo completionRepository) GetCompletionState(ctx context.Context, cmID, userID string, exec ...core.DBExecutor) (course.CompletionState, error) {
	var state course.CompletionState
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &state,
		"SELECT completion_state FROM course_module_completion WHERE course_module_id = $1 AND user_id = $2",
		cmID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.CompletionIncomplete, nil
		}
		return course.CompletionIncomplete, errors.Wrap(err, "querying completion state")
	}
	return state, nil
}

func (repo completionRepository) SetCompletionState(ctx context.Context, cmID, userID string, state course.CompletionState, tstamp time.Time, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx, `
		INSERT INTO course_module_completion (id, course_module_id, user_id, completion_state, time_modified)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (course_module_id, user_id)
		DO UPDATE SET completion_state = EXCLUDED.completion_state, time_modified = EXCLUDED.time_modified`,
		uuid.New().String(), cmID, userID, state, tstamp.UTC(),
	)
	return errors.Wrap(err, "upserting completion state")
}

func (repo completionRepository) DeleteModuleCompletions(ctx context.Context, cmID string, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		"DELETE FROM course_module_completion WHERE course_module_id = $1", cmID)
	return errors.Wrap(err, "deleting completions")
}
