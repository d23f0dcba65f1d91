package inmemdb

import (
	"context"
	"strings"
	"time"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
)

type completionRepository struct {
	db *completionTable
}

var _ course.CompletionRepository = (*completionRepository)(nil)

func NewCompletionRepository(db *DB) *completionRepository {
	return &completionRepository{db: db.completion}
}

func completionKey(cmID, userID string) string {
	return cmID + "/" + userID
}

func (repo *completionRepository) GetCompletionState(ctx context.Context, cmID, userID string, _ ...core.DBExecutor) (course.CompletionState, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.table[completionKey(cmID, userID)], nil
}

func (repo *completionRepository) SetCompletionState(ctx context.Context, cmID, userID string, state course.CompletionState, _ time.Time, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table[completionKey(cmID, userID)] = state
	return nil
}

func (repo *completionRepository) DeleteModuleCompletions(ctx context.Context, cmID string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for key := range repo.db.table {
		if strings.HasPrefix(key, cmID+"/") {
			delete(repo.db.table, key)
		}
	}
	return nil
}
