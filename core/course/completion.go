package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

// CompletionState is a user's completion state on one course-module.
type CompletionState int

const (
	CompletionIncomplete   CompletionState = 0
	CompletionComplete     CompletionState = 1
	CompletionCompletePass CompletionState = 2
	CompletionCompleteFail CompletionState = 3
)

// IsComplete reports whether the state counts as done, regardless of outcome.
func (s CompletionState) IsComplete() bool {
	return s != CompletionIncomplete
}

type CompletionRepository interface {
	// GetCompletionState returns CompletionIncomplete when no record exists.
	GetCompletionState(ctx context.Context, cmID, userID string, exec ...core.DBExecutor) (CompletionState, error)
	SetCompletionState(ctx context.Context, cmID, userID string, state CompletionState, tstamp time.Time, exec ...core.DBExecutor) error
	DeleteModuleCompletions(ctx context.Context, cmID string, exec ...core.DBExecutor) error
}

// Tracker is the completion-state machine the host runs for course-modules.
type Tracker struct {
	repo CompletionRepository
}

func NewTracker(repo CompletionRepository) *Tracker {
	return &Tracker{repo: repo}
}

func (t *Tracker) State(ctx context.Context, cm CourseModule, userID string) (CompletionState, error) {
	if cm.Completion == TrackingNone {
		return CompletionIncomplete, nil
	}
	state, err := t.repo.GetCompletionState(ctx, cm.ID, userID)
	if err != nil {
		return CompletionIncomplete, errors.Wrap(err, "getting completion state")
	}
	return state, nil
}

// MarkViewed records that the user viewed the course-module. Under automatic
// tracking an incomplete state upgrades to complete; manual and untracked
// modules are left alone.
func (t *Tracker) MarkViewed(ctx context.Context, cm CourseModule, userID string) error {
	if cm.Completion != TrackingAutomatic {
		return nil
	}
	state, err := t.repo.GetCompletionState(ctx, cm.ID, userID)
	if err != nil {
		return errors.Wrap(err, "getting completion state")
	}
	if state.IsComplete() {
		return nil
	}
	if err := t.repo.SetCompletionState(ctx, cm.ID, userID, CompletionComplete, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "setting completion state")
	}
	return nil
}

// Reset drops all completion records of a course-module, eg. when the
// wrapped activity instance is deleted.
func (t *Tracker) Reset(ctx context.Context, cmID string) error {
	return errors.Wrap(t.repo.DeleteModuleCompletions(ctx, cmID), "deleting module completions")
}

// SetState forces a user's completion state, eg. from a manual tick.
func (t *Tracker) SetState(ctx context.Context, cm CourseModule, userID string, state CompletionState) error {
	if cm.Completion == TrackingNone {
		return nil
	}
	return errors.Wrap(
		t.repo.SetCompletionState(ctx, cm.ID, userID, state, time.Now().UTC()),
		"setting completion state",
	)
}
