package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
	"github.com/trezcool/chingu/storage/database"
)

const accountColumns = `id, email, nickname, password_hash, email_verified, email_check_token,
	email_check_token_generated_at, joined_at, bio, url, occupation, location, company, profile_image,
	study_created_by_email, study_created_by_web, study_enrollment_result_by_email,
	study_enrollment_result_by_web, study_updated_by_email, study_updated_by_web`

type accountRow struct {
	ID                           int         `db:"id"`
	Email                        string      `db:"email"`
	Nickname                     string      `db:"nickname"`
	PasswordHash                 []byte      `db:"password_hash"`
	EmailVerified                bool        `db:"email_verified"`
	EmailCheckToken              null.String `db:"email_check_token"`
	EmailCheckTokenGeneratedAt   null.Time   `db:"email_check_token_generated_at"`
	JoinedAt                     null.Time   `db:"joined_at"`
	Bio                          null.String `db:"bio"`
	URL                          null.String `db:"url"`
	Occupation                   null.String `db:"occupation"`
	Location                     null.String `db:"location"`
	Company                      null.String `db:"company"`
	ProfileImage                 null.String `db:"profile_image"`
	StudyCreatedByEmail          bool        `db:"study_created_by_email"`
	StudyCreatedByWeb            bool        `db:"study_created_by_web"`
	StudyEnrollmentResultByEmail bool        `db:"study_enrollment_result_by_email"`
	StudyEnrollmentResultByWeb   bool        `db:"study_enrollment_result_by_web"`
	StudyUpdatedByEmail          bool        `db:"study_updated_by_email"`
	StudyUpdatedByWeb            bool        `db:"study_updated_by_web"`
}

func newAccountRow(acc account.Account) accountRow {
	return accountRow{
		ID:                           acc.ID,
		Email:                        acc.Email,
		Nickname:                     acc.Nickname,
		PasswordHash:                 acc.PasswordHash,
		EmailVerified:                acc.EmailVerified,
		EmailCheckToken:              nullString(acc.EmailCheckToken),
		EmailCheckTokenGeneratedAt:   nullTime(acc.EmailCheckTokenGeneratedAt),
		JoinedAt:                     nullTime(acc.JoinedAt),
		Bio:                          nullString(acc.Profile.Bio),
		URL:                          nullString(acc.Profile.URL),
		Occupation:                   nullString(acc.Profile.Occupation),
		Location:                     nullString(acc.Profile.Location),
		Company:                      nullString(acc.Profile.Company),
		ProfileImage:                 nullString(acc.Profile.ProfileImage),
		StudyCreatedByEmail:          acc.Notifications.StudyCreatedByEmail,
		StudyCreatedByWeb:            acc.Notifications.StudyCreatedByWeb,
		StudyEnrollmentResultByEmail: acc.Notifications.StudyEnrollmentResultByEmail,
		StudyEnrollmentResultByWeb:   acc.Notifications.StudyEnrollmentResultByWeb,
		StudyUpdatedByEmail:          acc.Notifications.StudyUpdatedByEmail,
		StudyUpdatedByWeb:            acc.Notifications.StudyUpdatedByWeb,
	}
}

func (r accountRow) account() account.Account {
	return account.Account{
		ID:                         r.ID,
		Email:                      r.Email,
		Nickname:                   r.Nickname,
		PasswordHash:               r.PasswordHash,
		EmailVerified:              r.EmailVerified,
		EmailCheckToken:            r.EmailCheckToken.String,
		EmailCheckTokenGeneratedAt: r.EmailCheckTokenGeneratedAt.Time,
		JoinedAt:                   r.JoinedAt.Time,
		Profile: account.Profile{
			Bio:          r.Bio.String,
			URL:          r.URL.String,
			Occupation:   r.Occupation.String,
			Location:     r.Location.String,
			Company:      r.Company.String,
			ProfileImage: r.ProfileImage.String,
		},
		Notifications: account.Notifications{
			StudyCreatedByEmail:          r.StudyCreatedByEmail,
			StudyCreatedByWeb:            r.StudyCreatedByWeb,
			StudyEnrollmentResultByEmail: r.StudyEnrollmentResultByEmail,
			StudyEnrollmentResultByWeb:   r.StudyEnrollmentResultByWeb,
			StudyUpdatedByEmail:          r.StudyUpdatedByEmail,
			StudyUpdatedByWeb:            r.StudyUpdatedByWeb,
		},
	}
}

type accountRepository struct {
	db core.DBExecutor
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func trapAccountUniqueErr(err error) error {
	if constraint, ok := database.IsUniqueViolation(err); ok {
		switch constraint {
		case "account_email_key":
			return account.ErrEmailExists
		case "account_nickname_key":
			return account.ErrNicknameExists
		}
	}
	return err
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account, exec ...core.DBExecutor) (account.Account, error) {
	e := getExec(repo.db, exec)
	q, args, err := sqlx.Named(`
		INSERT INTO account (email, nickname, password_hash, email_verified, email_check_token,
			email_check_token_generated_at, joined_at, bio, url, occupation, location, company, profile_image,
			study_created_by_email, study_created_by_web, study_enrollment_result_by_email,
			study_enrollment_result_by_web, study_updated_by_email, study_updated_by_web)
		VALUES (:email, :nickname, :password_hash, :email_verified, :email_check_token,
			:email_check_token_generated_at, :joined_at, :bio, :url, :occupation, :location, :company, :profile_image,
			:study_created_by_email, :study_created_by_web, :study_enrollment_result_by_email,
			:study_enrollment_result_by_web, :study_updated_by_email, :study_updated_by_web)
		RETURNING id`, newAccountRow(acc))
	if err != nil {
		return account.Account{}, errors.Wrap(err, "binding account")
	}
	if err = e.GetContext(ctx, &acc.ID, e.Rebind(q), args...); err != nil {
		return account.Account{}, trapAccountUniqueErr(err)
	}
	acc.Load(nil, nil)
	return acc, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account, exec ...core.DBExecutor) error {
	e := getExec(repo.db, exec)
	res, err := sqlx.NamedExecContext(ctx, e, `
		UPDATE account SET email = :email, nickname = :nickname, password_hash = :password_hash,
			email_verified = :email_verified, email_check_token = :email_check_token,
			email_check_token_generated_at = :email_check_token_generated_at, joined_at = :joined_at,
			bio = :bio, url = :url, occupation = :occupation, location = :location, company = :company,
			profile_image = :profile_image,
			study_created_by_email = :study_created_by_email, study_created_by_web = :study_created_by_web,
			study_enrollment_result_by_email = :study_enrollment_result_by_email,
			study_enrollment_result_by_web = :study_enrollment_result_by_web,
			study_updated_by_email = :study_updated_by_email, study_updated_by_web = :study_updated_by_web
		WHERE id = :id`, newAccountRow(acc))
	if err != nil {
		return trapAccountUniqueErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}
	return nil
}

// get loads the account matching `where` along with its tags and zones.
func (repo *accountRepository) get(ctx context.Context, e core.DBExecutor, where string, arg interface{}) (account.Account, error) {
	var row accountRow
	if err := e.GetContext(ctx, &row, "SELECT "+accountColumns+" FROM account WHERE "+where, arg); err != nil {
		return account.Account{}, trapNoRowsErr(err, account.ErrNotFound)
	}

	tags := make([]tag.Tag, 0)
	err := e.SelectContext(ctx, &tags, `
		SELECT t.id, t.title FROM tag t
		JOIN account_tag atg ON atg.tag_id = t.id
		WHERE atg.account_id = $1 ORDER BY t.title`, row.ID)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "selecting account tags")
	}

	zones := make([]zone.Zone, 0)
	err = e.SelectContext(ctx, &zones, `
		SELECT z.id, z.city, z.local_name_of_city, z.province FROM zone z
		JOIN account_zone az ON az.zone_id = z.id
		WHERE az.account_id = $1 ORDER BY z.city`, row.ID)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "selecting account zones")
	}

	acc := row.account()
	acc.Load(tags, zones)
	return acc, nil
}

func (repo *accountRepository) GetAccountByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.Account, error) {
	return repo.get(ctx, getExec(repo.db, exec), "id = $1", id)
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (account.Account, error) {
	return repo.get(ctx, getExec(repo.db, exec), "email = $1", email)
}

func (repo *accountRepository) GetAccountByNickname(ctx context.Context, nickname string, exec ...core.DBExecutor) (account.Account, error) {
	return repo.get(ctx, getExec(repo.db, exec), "nickname = $1", nickname)
}

func (repo *accountRepository) exists(ctx context.Context, e core.DBExecutor, where string, arg interface{}) (bool, error) {
	var ok bool
	err := e.GetContext(ctx, &ok, "SELECT EXISTS (SELECT 1 FROM account WHERE "+where+")", arg)
	return ok, err
}

func (repo *accountRepository) ExistsByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error) {
	return repo.exists(ctx, getExec(repo.db, exec), "email = $1", email)
}

func (repo *accountRepository) ExistsByNickname(ctx context.Context, nickname string, exec ...core.DBExecutor) (bool, error) {
	return repo.exists(ctx, getExec(repo.db, exec), "nickname = $1", nickname)
}

func (repo *accountRepository) CountAccounts(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var n int
	err := getExec(repo.db, exec).GetContext(ctx, &n, "SELECT COUNT(*) FROM account")
	return n, err
}

func (repo *accountRepository) AddAccountTag(ctx context.Context, accountID, tagID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		"INSERT INTO account_tag (account_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", accountID, tagID)
	return err
}

func (repo *accountRepository) RemoveAccountTag(ctx context.Context, accountID, tagID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		"DELETE FROM account_tag WHERE account_id = $1 AND tag_id = $2", accountID, tagID)
	return err
}

func (repo *accountRepository) AddAccountZone(ctx context.Context, accountID, zoneID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		"INSERT INTO account_zone (account_id, zone_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", accountID, zoneID)
	return err
}

func (repo *accountRepository) RemoveAccountZone(ctx context.Context, accountID, zoneID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		"DELETE FROM account_zone WHERE account_id = $1 AND zone_id = $2", accountID, zoneID)
	return err
}
