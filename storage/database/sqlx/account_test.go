package sqlxrepos

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

var accountCols = []string{
	"id", "email", "nickname", "password_hash", "email_verified", "email_check_token",
	"email_check_token_generated_at", "joined_at", "bio", "url", "occupation", "location", "company", "profile_image",
	"study_created_by_email", "study_created_by_web", "study_enrollment_result_by_email",
	"study_enrollment_result_by_web", "study_updated_by_email", "study_updated_by_web",
}

func accountValues(id int, email, nickname string, joinedAt interface{}, bio interface{}) []driver.Value {
	return []driver.Value{
		id, email, nickname, []byte("hash"), joinedAt != nil, nil,
		nil, joinedAt, bio, nil, nil, nil, nil, nil,
		false, true, false, true, false, true,
	}
}

func TestAccountRepository_CreateAccount(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	acc := account.New("kim@test.kr", "kim")
	acc.PasswordHash = []byte("hash")
	acc.GenerateEmailCheckToken()

	mock.ExpectQuery(`INSERT INTO account .* RETURNING id`).
		WithArgs(
			"kim@test.kr", "kim", []byte("hash"), false, acc.EmailCheckToken,
			sqlmock.AnyArg(), nil, nil, nil, nil, nil, nil, nil,
			false, true, false, true, false, true,
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	created, err := repo.CreateAccount(ctx, acc)
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)
	assert.Empty(t, created.Tags())

	mock.ExpectQuery(`INSERT INTO account`).WillReturnError(&pq.Error{Code: "23505", Constraint: "account_email_key"})
	_, err = repo.CreateAccount(ctx, acc)
	assert.Equal(t, account.ErrEmailExists, err)

	mock.ExpectQuery(`INSERT INTO account`).WillReturnError(&pq.Error{Code: "23505", Constraint: "account_nickname_key"})
	_, err = repo.CreateAccount(ctx, acc)
	assert.Equal(t, account.ErrNicknameExists, err)
}

func TestAccountRepository_UpdateAccount(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	acc := account.New("kim@test.kr", "kim")
	acc.ID = 7

	mock.ExpectExec(`UPDATE account SET .* WHERE id = \$20`).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateAccount(ctx, acc))

	mock.ExpectExec(`UPDATE account SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Equal(t, account.ErrNotFound, repo.UpdateAccount(ctx, acc))

	mock.ExpectExec(`UPDATE account SET`).WillReturnError(&pq.Error{Code: "23505", Constraint: "account_nickname_key"})
	assert.Equal(t, account.ErrNicknameExists, repo.UpdateAccount(ctx, acc))
}

func TestAccountRepository_GetAccountByEmail(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)
	joinedAt := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, email, .* FROM account WHERE email = \$1`).
		WithArgs("kim@test.kr").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(accountValues(7, "kim@test.kr", "kim", joinedAt, "hello")...))
	mock.ExpectQuery(`SELECT t.id, t.title FROM tag t JOIN account_tag atg`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "Go"))
	mock.ExpectQuery(`SELECT z.id, z.city, z.local_name_of_city, z.province FROM zone z JOIN account_zone az`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "local_name_of_city", "province"}).AddRow(2, "Suwon", "수원시", "경기도"))

	acc, err := repo.GetAccountByEmail(ctx, "kim@test.kr")
	require.NoError(t, err)
	assert.Equal(t, 7, acc.ID)
	assert.Equal(t, "kim", acc.Nickname)
	assert.True(t, acc.EmailVerified)
	assert.Empty(t, acc.EmailCheckToken)
	assert.Equal(t, joinedAt, acc.JoinedAt)
	assert.Equal(t, "hello", acc.Profile.Bio)
	assert.Equal(t, account.DefaultNotifications(), acc.Notifications)
	assert.Equal(t, []tag.Tag{{ID: 1, Title: "Go"}}, acc.Tags())
	assert.Equal(t, []zone.Zone{{ID: 2, City: "Suwon", LocalNameOfCity: "수원시", Province: "경기도"}}, acc.Zones())

	mock.ExpectQuery(`FROM account WHERE nickname = \$1`).
		WithArgs("lee").
		WillReturnRows(sqlmock.NewRows(accountCols))
	_, err = repo.GetAccountByNickname(ctx, "lee")
	assert.Equal(t, account.ErrNotFound, err)
}

func TestAccountRepository_exists(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM account WHERE email = \$1\)`).
		WithArgs("kim@test.kr").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.ExistsByEmail(ctx, "kim@test.kr")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM account WHERE nickname = \$1\)`).
		WithArgs("kim").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	ok, err = repo.ExistsByNickname(ctx, "kim")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM account`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	n, err := repo.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAccountRepository_links(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT INTO account_tag \(account_id, tag_id\) VALUES \(\$1, \$2\) ON CONFLICT DO NOTHING`).
		WithArgs(7, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM account_tag WHERE account_id = \$1 AND tag_id = \$2`).
		WithArgs(7, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO account_zone \(account_id, zone_id\) VALUES \(\$1, \$2\) ON CONFLICT DO NOTHING`).
		WithArgs(7, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM account_zone WHERE account_id = \$1 AND zone_id = \$2`).
		WithArgs(7, 2).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddAccountTag(ctx, 7, 1))
	require.NoError(t, repo.RemoveAccountTag(ctx, 7, 1))
	require.NoError(t, repo.AddAccountZone(ctx, 7, 2))
	require.NoError(t, repo.RemoveAccountZone(ctx, 7, 2))
}
