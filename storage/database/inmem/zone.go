package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/zone"
)

type zoneRepository struct {
	db *DB
}

var _ zone.Repository = (*zoneRepository)(nil)

func NewZoneRepository(db *DB) zone.Repository {
	return &zoneRepository{db: db}
}

// get must be called with a lock held.
func (repo *zoneRepository) get(city, province string) (zone.Zone, bool) {
	for _, row := range repo.db.zones {
		if row.City == city && row.Province == province {
			return row, true
		}
	}
	return zone.Zone{}, false
}

func (repo *zoneRepository) CreateZones(_ context.Context, zones []zone.Zone, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, z := range zones {
		if _, ok := repo.get(z.City, z.Province); ok {
			continue
		}
		z.ID = repo.db.nextPK("zone")
		repo.db.zones[z.ID] = z
		n++
	}
	return n, nil
}

func (repo *zoneRepository) GetZoneByCityAndProvince(_ context.Context, city, province string, _ ...core.DBExecutor) (zone.Zone, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if z, ok := repo.get(city, province); ok {
		return z, nil
	}
	return zone.Zone{}, zone.ErrNotFound
}

func (repo *zoneRepository) QueryAllZones(_ context.Context, _ ...core.DBExecutor) ([]zone.Zone, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	zones := make([]zone.Zone, 0, len(repo.db.zones))
	for _, row := range repo.db.zones {
		zones = append(zones, row)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}
