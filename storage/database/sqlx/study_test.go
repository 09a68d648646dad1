package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chingu/core/study"
	"github.com/trezcool/chingu/core/tag"
)

var studyCols = []string{"id", "path", "title", "short_description", "full_description", "image", "published", "recruiting", "closed", "created_at"}

func TestStudyRepository_CreateStudy(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewStudyRepository(db)
	createdAt := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	s := study.Study{Path: "go-study", Title: "Go study", ShortDescription: "short", FullDescription: "full", CreatedAt: createdAt}

	mock.ExpectQuery(`INSERT INTO study .* RETURNING id`).
		WithArgs("go-study", "Go study", "short", "full", nil, false, false, false, createdAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	created, err := repo.CreateStudy(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 4, created.ID)
	assert.Equal(t, "go-study", created.Path)

	mock.ExpectQuery(`INSERT INTO study`).WillReturnError(&pq.Error{Code: "23505", Constraint: "study_path_key"})
	_, err = repo.CreateStudy(ctx, s)
	assert.Equal(t, study.ErrPathExists, err)

	mock.ExpectExec(`INSERT INTO study_manager \(study_id, account_id\) VALUES \(\$1, \$2\)`).
		WithArgs(4, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.AddStudyManager(ctx, 4, 7))
}

func TestStudyRepository_ExistsByPath(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudyRepository(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM study WHERE path = \$1\)`).
		WithArgs("스터디").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.ExistsByPath(context.Background(), "스터디")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStudyRepository_GetStudyByPath(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	newStudyRows := func() *sqlmock.Rows {
		return sqlmock.NewRows(studyCols).AddRow(4, "go-study", "Go study", "short", "full", nil, false, true, false, createdAt)
	}
	memberCols := []string{"id", "nickname", "profile_image"}

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM study WHERE path = \$1`).WithArgs("nope").WillReturnRows(sqlmock.NewRows(studyCols))

		_, err := NewStudyRepository(db).GetStudyByPath(ctx, "nope", study.LoadAll)
		assert.Equal(t, study.ErrNotFound, err)
	})

	t.Run("managers and tags", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM study WHERE path = \$1`).WithArgs("go-study").WillReturnRows(newStudyRows())
		mock.ExpectQuery(`FROM account a JOIN study_manager sm`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows(memberCols).AddRow(7, "kim", ""))
		mock.ExpectQuery(`FROM tag t JOIN study_tag st`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Go"))

		s, err := NewStudyRepository(db).GetStudyByPath(ctx, "go-study", study.LoadManagers|study.LoadTags)
		require.NoError(t, err)
		assert.Equal(t, 4, s.ID)
		assert.True(t, s.Recruiting)
		assert.Equal(t, createdAt, s.CreatedAt)
		assert.Equal(t, []study.Member{{ID: 7, Nickname: "kim"}}, s.Managers)
		assert.Equal(t, []tag.Tag{{ID: 1, Title: "Go"}}, s.Tags)
		assert.Nil(t, s.Members)
		assert.Nil(t, s.Zones)
	})

	t.Run("all", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(`FROM study WHERE path = \$1`).WithArgs("go-study").WillReturnRows(newStudyRows())
		mock.ExpectQuery(`JOIN study_manager sm`).WithArgs(4).WillReturnRows(sqlmock.NewRows(memberCols).AddRow(7, "kim", ""))
		mock.ExpectQuery(`JOIN study_member sm`).WithArgs(4).WillReturnRows(sqlmock.NewRows(memberCols).AddRow(8, "lee", "img"))
		mock.ExpectQuery(`JOIN study_tag st`).WithArgs(4).WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))
		mock.ExpectQuery(`JOIN study_zone sz`).WithArgs(4).WillReturnRows(sqlmock.NewRows([]string{"id", "city", "local_name_of_city", "province"}))

		s, err := NewStudyRepository(db).GetStudyByPath(ctx, "go-study", study.LoadAll)
		require.NoError(t, err)
		assert.Equal(t, []study.Member{{ID: 8, Nickname: "lee", ProfileImage: "img"}}, s.Members)
		assert.NotNil(t, s.Tags)
		assert.Empty(t, s.Tags)
		assert.NotNil(t, s.Zones)
	})
}
