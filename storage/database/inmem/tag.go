package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/tag"
)

type tagRepository struct {
	db *DB
}

var _ tag.Repository = (*tagRepository)(nil)

func NewTagRepository(db *DB) tag.Repository {
	return &tagRepository{db: db}
}

func (repo *tagRepository) CreateTag(_ context.Context, t tag.Tag, _ ...core.DBExecutor) (tag.Tag, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, row := range repo.db.tags {
		if row.Title == t.Title {
			return tag.Tag{}, tag.ErrTitleExists
		}
	}
	t.ID = repo.db.nextPK("tag")
	repo.db.tags[t.ID] = t
	return t, nil
}

func (repo *tagRepository) GetTagByTitle(_ context.Context, title string, _ ...core.DBExecutor) (tag.Tag, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, row := range repo.db.tags {
		if row.Title == title {
			return row, nil
		}
	}
	return tag.Tag{}, tag.ErrNotFound
}

func (repo *tagRepository) QueryAllTags(_ context.Context, _ ...core.DBExecutor) ([]tag.Tag, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tags := make([]tag.Tag, 0, len(repo.db.tags))
	for _, row := range repo.db.tags {
		tags = append(tags, row)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}
