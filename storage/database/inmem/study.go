package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/study"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

type studyRepository struct {
	db *DB
}

var _ study.Repository = (*studyRepository)(nil)

func NewStudyRepository(db *DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) CreateStudy(_ context.Context, s study.Study, _ ...core.DBExecutor) (study.Study, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, row := range repo.db.studies {
		if row.Path == s.Path {
			return study.Study{}, study.ErrPathExists
		}
	}
	s.ID = repo.db.nextPK("study")
	s.Managers, s.Members, s.Tags, s.Zones = nil, nil, nil, nil
	repo.db.studies[s.ID] = &s
	return s, nil
}

func (repo *studyRepository) AddStudyManager(_ context.Context, studyID, accountID int, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.studies[studyID]; !ok {
		return study.ErrNotFound
	}
	if _, ok := repo.db.accounts[accountID]; !ok {
		return account.ErrNotFound
	}
	repo.db.studyManager.add(studyID, accountID)
	return nil
}

func (repo *studyRepository) ExistsByPath(_ context.Context, path string, _ ...core.DBExecutor) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, row := range repo.db.studies {
		if row.Path == path {
			return true, nil
		}
	}
	return false, nil
}

func (repo *studyRepository) members(l links, studyID int) []study.Member {
	members := make([]study.Member, 0)
	for _, id := range l.ids(studyID) {
		if acc, ok := repo.db.accounts[id]; ok {
			members = append(members, study.Member{ID: acc.ID, Nickname: acc.Nickname, ProfileImage: acc.Profile.ProfileImage})
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

func (repo *studyRepository) GetStudyByPath(_ context.Context, path string, load study.Load, _ ...core.DBExecutor) (study.Study, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, row := range repo.db.studies {
		if row.Path != path {
			continue
		}
		s := *row
		if load.Has(study.LoadManagers) {
			s.Managers = repo.members(repo.db.studyManager, s.ID)
		}
		if load.Has(study.LoadMembers) {
			s.Members = repo.members(repo.db.studyMember, s.ID)
		}
		if load.Has(study.LoadTags) {
			s.Tags = make([]tag.Tag, 0)
			for _, id := range repo.db.studyTags.ids(s.ID) {
				s.Tags = append(s.Tags, repo.db.tags[id])
			}
		}
		if load.Has(study.LoadZones) {
			s.Zones = make([]zone.Zone, 0)
			for _, id := range repo.db.studyZones.ids(s.ID) {
				s.Zones = append(s.Zones, repo.db.zones[id])
			}
		}
		return s, nil
	}
	return study.Study{}, study.ErrNotFound
}
