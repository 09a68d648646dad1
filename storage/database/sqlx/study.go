package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/study"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
	"github.com/trezcool/chingu/storage/database"
)

type studyRow struct {
	ID               int         `db:"id"`
	Path             string      `db:"path"`
	Title            string      `db:"title"`
	ShortDescription string      `db:"short_description"`
	FullDescription  string      `db:"full_description"`
	Image            null.String `db:"image"`
	Published        bool        `db:"published"`
	Recruiting       bool        `db:"recruiting"`
	Closed           bool        `db:"closed"`
	CreatedAt        time.Time   `db:"created_at"`
}

func (r studyRow) study() study.Study {
	return study.Study{
		ID:               r.ID,
		Path:             r.Path,
		Title:            r.Title,
		ShortDescription: r.ShortDescription,
		FullDescription:  r.FullDescription,
		Image:            r.Image.String,
		Published:        r.Published,
		Recruiting:       r.Recruiting,
		Closed:           r.Closed,
		CreatedAt:        r.CreatedAt,
	}
}

type studyRepository struct {
	db core.DBExecutor
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(db *sqlx.DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) CreateStudy(ctx context.Context, s study.Study, exec ...core.DBExecutor) (study.Study, error) {
	e := getExec(repo.db, exec)
	row := studyRow{
		Path:             s.Path,
		Title:            s.Title,
		ShortDescription: s.ShortDescription,
		FullDescription:  s.FullDescription,
		Image:            nullString(s.Image),
		Published:        s.Published,
		Recruiting:       s.Recruiting,
		Closed:           s.Closed,
		CreatedAt:        s.CreatedAt,
	}
	q, args, err := sqlx.Named(`
		INSERT INTO study (path, title, short_description, full_description, image, published, recruiting, closed, created_at)
		VALUES (:path, :title, :short_description, :full_description, :image, :published, :recruiting, :closed, :created_at)
		RETURNING id`, row)
	if err != nil {
		return study.Study{}, errors.Wrap(err, "binding study")
	}
	if err = e.GetContext(ctx, &s.ID, e.Rebind(q), args...); err != nil {
		if constraint, ok := database.IsUniqueViolation(err); ok && constraint == "study_path_key" {
			return study.Study{}, study.ErrPathExists
		}
		return study.Study{}, err
	}
	return s, nil
}

func (repo *studyRepository) AddStudyManager(ctx context.Context, studyID, accountID int, exec ...core.DBExecutor) error {
	_, err := getExec(repo.db, exec).ExecContext(ctx,
		"INSERT INTO study_manager (study_id, account_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", studyID, accountID)
	return err
}

func (repo *studyRepository) ExistsByPath(ctx context.Context, path string, exec ...core.DBExecutor) (bool, error) {
	var ok bool
	err := getExec(repo.db, exec).GetContext(ctx, &ok, "SELECT EXISTS (SELECT 1 FROM study WHERE path = $1)", path)
	return ok, err
}

func (repo *studyRepository) members(ctx context.Context, e core.DBExecutor, table string, studyID int) ([]study.Member, error) {
	members := make([]study.Member, 0)
	err := e.SelectContext(ctx, &members, `
		SELECT a.id, a.nickname, COALESCE(a.profile_image, '') AS profile_image FROM account a
		JOIN `+table+` sm ON sm.account_id = a.id
		WHERE sm.study_id = $1 ORDER BY a.id`, studyID)
	return members, errors.Wrapf(err, "selecting %s", table)
}

func (repo *studyRepository) GetStudyByPath(ctx context.Context, path string, load study.Load, exec ...core.DBExecutor) (study.Study, error) {
	e := getExec(repo.db, exec)

	var row studyRow
	err := e.GetContext(ctx, &row, `
		SELECT id, path, title, short_description, full_description, image, published, recruiting, closed, created_at
		FROM study WHERE path = $1`, path)
	if err != nil {
		return study.Study{}, trapNoRowsErr(err, study.ErrNotFound)
	}
	s := row.study()

	if load.Has(study.LoadManagers) {
		if s.Managers, err = repo.members(ctx, e, "study_manager", s.ID); err != nil {
			return study.Study{}, err
		}
	}
	if load.Has(study.LoadMembers) {
		if s.Members, err = repo.members(ctx, e, "study_member", s.ID); err != nil {
			return study.Study{}, err
		}
	}
	if load.Has(study.LoadTags) {
		s.Tags = make([]tag.Tag, 0)
		err = e.SelectContext(ctx, &s.Tags, `
			SELECT t.id, t.title FROM tag t
			JOIN study_tag st ON st.tag_id = t.id
			WHERE st.study_id = $1 ORDER BY t.title`, s.ID)
		if err != nil {
			return study.Study{}, errors.Wrap(err, "selecting study tags")
		}
	}
	if load.Has(study.LoadZones) {
		s.Zones = make([]zone.Zone, 0)
		err = e.SelectContext(ctx, &s.Zones, `
			SELECT z.id, z.city, z.local_name_of_city, z.province FROM zone z
			JOIN study_zone sz ON sz.zone_id = z.id
			WHERE sz.study_id = $1 ORDER BY z.city`, s.ID)
		if err != nil {
			return study.Study{}, errors.Wrap(err, "selecting study zones")
		}
	}
	return s, nil
}
