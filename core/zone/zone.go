package zone

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
	appfs "github.com/trezcool/chingu/fs"
)

const seedFile = "zones_kr.csv"

var (
	// errors
	ErrNotFound    = errors.New("zone not found")
	ErrInvalidName = errors.New("invalid zone name")
)

type Zone struct {
	ID              int    `json:"id" db:"id"`
	City            string `json:"city" db:"city"`
	LocalNameOfCity string `json:"localNameOfCity" db:"local_name_of_city"`
	Province        string `json:"province" db:"province"`
}

// String returns the display form of z: `City(LocalName)/Province`.
func (z Zone) String() string {
	return fmt.Sprintf("%s(%s)/%s", z.City, z.LocalNameOfCity, z.Province)
}

// ParseName parses the display form of a zone, see Zone.String.
func ParseName(name string) (city, localName, province string, err error) {
	name = core.CleanString(name)
	open := strings.Index(name, "(")
	closing := strings.Index(name, ")")
	slash := strings.LastIndex(name, "/")
	if open <= 0 || closing < open || slash != closing+1 || slash == len(name)-1 {
		return "", "", "", ErrInvalidName
	}
	return name[:open], name[open+1 : closing], name[slash+1:], nil
}

// ZoneForm is the JSON payload of the zone add/remove endpoints.
// A zone is identified either by CityName and ProvinceName or by its display name.
type ZoneForm struct {
	ZoneName     string `json:"zoneName"`
	CityName     string `json:"cityName" validate:"required_without=ZoneName"`
	ProvinceName string `json:"provinceName" validate:"required_without=ZoneName"`
}

// Key returns the (city, province) pair designated by f.
func (f ZoneForm) Key() (city, province string, err error) {
	if f.ZoneName != "" {
		city, _, province, err = ParseName(f.ZoneName)
		return city, province, err
	}
	city, province = core.CleanString(f.CityName), core.CleanString(f.ProvinceName)
	if city == "" || province == "" {
		return "", "", ErrInvalidName
	}
	return city, province, nil
}

type (
	Repository interface {
		// CreateZones inserts zones, skipping existing (city, province) pairs, and returns the number inserted.
		CreateZones(ctx context.Context, zones []Zone, exec ...core.DBExecutor) (int, error)
		GetZoneByCityAndProvince(ctx context.Context, city, province string, exec ...core.DBExecutor) (Zone, error)
		QueryAllZones(ctx context.Context, exec ...core.DBExecutor) ([]Zone, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByCityAndProvince(ctx context.Context, city, province string, exec ...core.DBExecutor) (Zone, error) {
	return svc.repo.GetZoneByCityAndProvince(ctx, core.CleanString(city), core.CleanString(province), exec...)
}

// AllNames returns the display names of all zones, sorted.
func (svc *Service) AllNames(ctx context.Context) ([]string, error) {
	zones, err := svc.repo.QueryAllZones(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying zones")
	}
	return Names(zones), nil
}

// Seed loads the bundled zone list into the store. Existing zones are left untouched.
func (svc *Service) Seed(ctx context.Context) (int, error) {
	f, err := appfs.FS.Open(seedFile)
	if err != nil {
		return 0, errors.Wrap(err, "opening zones file")
	}
	defer func() { _ = f.Close() }()
	return svc.SeedFrom(ctx, f)
}

// SeedFrom loads zones from CSV records of the form `city,localNameOfCity,province`.
func (svc *Service) SeedFrom(ctx context.Context, r io.Reader) (int, error) {
	zones, err := ReadCSV(r)
	if err != nil {
		return 0, err
	}
	n, err := svc.repo.CreateZones(ctx, zones)
	return n, errors.Wrap(err, "creating zones")
}

func ReadCSV(r io.Reader) ([]Zone, error) {
	rdr := csv.NewReader(r)
	rdr.FieldsPerRecord = 3
	rdr.TrimLeadingSpace = true
	rdr.Comment = '#'

	records, err := rdr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading zones csv")
	}
	zones := make([]Zone, 0, len(records))
	for _, rec := range records {
		zones = append(zones, Zone{
			City:            core.CleanString(rec[0]),
			LocalNameOfCity: core.CleanString(rec[1]),
			Province:        core.CleanString(rec[2]),
		})
	}
	return zones, nil
}

// Names returns the sorted display names of zones.
func Names(zones []Zone) []string {
	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.String())
	}
	sort.Strings(names)
	return names
}
