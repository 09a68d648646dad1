package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/tag"
)

type tagRepository struct {
	db core.DBExecutor
}

var _ tag.Repository = (*tagRepository)(nil)

func NewTagRepository(db *sqlx.DB) tag.Repository {
	return &tagRepository{db: db}
}

// CreateTag does not raise the unique violation (it would abort the surrounding transaction):
// a conflicting insert returns no row.
func (repo *tagRepository) CreateTag(ctx context.Context, t tag.Tag, exec ...core.DBExecutor) (tag.Tag, error) {
	err := getExec(repo.db, exec).GetContext(ctx, &t.ID,
		"INSERT INTO tag (title) VALUES ($1) ON CONFLICT (title) DO NOTHING RETURNING id", t.Title)
	if err != nil {
		return tag.Tag{}, trapNoRowsErr(err, tag.ErrTitleExists)
	}
	return t, nil
}

func (repo *tagRepository) GetTagByTitle(ctx context.Context, title string, exec ...core.DBExecutor) (tag.Tag, error) {
	var t tag.Tag
	err := getExec(repo.db, exec).GetContext(ctx, &t, "SELECT id, title FROM tag WHERE title = $1", title)
	return t, trapNoRowsErr(err, tag.ErrNotFound)
}

func (repo *tagRepository) QueryAllTags(ctx context.Context, exec ...core.DBExecutor) ([]tag.Tag, error) {
	tags := make([]tag.Tag, 0)
	err := getExec(repo.db, exec).SelectContext(ctx, &tags, "SELECT id, title FROM tag ORDER BY id")
	return tags, err
}
