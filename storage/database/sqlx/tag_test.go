package sqlxrepos

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chingu/core/tag"
)

func TestTagRepository_CreateTag(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectQuery(`INSERT INTO tag \(title\) VALUES \(\$1\) ON CONFLICT \(title\) DO NOTHING RETURNING id`).
		WithArgs("Go").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	created, err := repo.CreateTag(ctx, tag.Tag{Title: "Go"})
	require.NoError(t, err)
	assert.Equal(t, tag.Tag{ID: 3, Title: "Go"}, created)

	mock.ExpectQuery(`INSERT INTO tag`).WithArgs("Go").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.CreateTag(ctx, tag.Tag{Title: "Go"})
	assert.Equal(t, tag.ErrTitleExists, err)
}

func TestTagRepository_GetTagByTitle(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectQuery(`SELECT id, title FROM tag WHERE title = \$1`).
		WithArgs("Go").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(3, "Go"))
	got, err := repo.GetTagByTitle(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, tag.Tag{ID: 3, Title: "Go"}, got)

	mock.ExpectQuery(`SELECT id, title FROM tag WHERE title = \$1`).
		WithArgs("Rust").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))
	_, err = repo.GetTagByTitle(ctx, "Rust")
	assert.Equal(t, tag.ErrNotFound, err)
}

func TestTagRepository_QueryAllTags(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectQuery(`SELECT id, title FROM tag ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Spring").AddRow(2, "Go"))
	tags, err := repo.QueryAllTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []tag.Tag{{ID: 1, Title: "Spring"}, {ID: 2, Title: "Go"}}, tags)
}

func TestTagRepository_inTx(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewTagRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title FROM tag WHERE title = \$1`).
		WithArgs("Go").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(3, "Go"))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	_, err = repo.GetTagByTitle(ctx, "Go", tx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
}
