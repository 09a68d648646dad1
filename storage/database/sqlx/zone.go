package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/zone"
)

type zoneRepository struct {
	db core.DBExecutor
}

var _ zone.Repository = (*zoneRepository)(nil)

func NewZoneRepository(db *sqlx.DB) zone.Repository {
	return &zoneRepository{db: db}
}

func (repo *zoneRepository) CreateZones(ctx context.Context, zones []zone.Zone, exec ...core.DBExecutor) (int, error) {
	e := getExec(repo.db, exec)
	var n int64
	for _, z := range zones {
		res, err := sqlx.NamedExecContext(ctx, e, `
			INSERT INTO zone (city, local_name_of_city, province)
			VALUES (:city, :local_name_of_city, :province)
			ON CONFLICT (city, province) DO NOTHING`, z)
		if err != nil {
			return int(n), errors.Wrapf(err, "inserting zone %s", z)
		}
		if affected, err := res.RowsAffected(); err == nil {
			n += affected
		}
	}
	return int(n), nil
}

func (repo *zoneRepository) GetZoneByCityAndProvince(ctx context.Context, city, province string, exec ...core.DBExecutor) (zone.Zone, error) {
	var z zone.Zone
	err := getExec(repo.db, exec).GetContext(ctx, &z,
		"SELECT id, city, local_name_of_city, province FROM zone WHERE city = $1 AND province = $2", city, province)
	return z, trapNoRowsErr(err, zone.ErrNotFound)
}

func (repo *zoneRepository) QueryAllZones(ctx context.Context, exec ...core.DBExecutor) ([]zone.Zone, error) {
	zones := make([]zone.Zone, 0)
	err := getExec(repo.db, exec).SelectContext(ctx, &zones,
		"SELECT id, city, local_name_of_city, province FROM zone ORDER BY id")
	return zones, err
}
