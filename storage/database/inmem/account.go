package inmemdb

import (
	"context"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

// load returns a copy of the stored account with its tag and zone sets. Read lock must be held.
func (repo *accountRepository) load(row *account.Account) account.Account {
	acc := *row
	tags := make([]tag.Tag, 0)
	for _, id := range repo.db.accountTags.ids(acc.ID) {
		tags = append(tags, repo.db.tags[id])
	}
	zones := make([]zone.Zone, 0)
	for _, id := range repo.db.accountZones.ids(acc.ID) {
		zones = append(zones, repo.db.zones[id])
	}
	acc.Load(tags, zones)
	return acc
}

// checkUniqueness must be called with a lock held.
func (repo *accountRepository) checkUniqueness(acc account.Account) error {
	for _, row := range repo.db.accounts {
		if row.ID == acc.ID {
			continue
		}
		if row.Email == acc.Email {
			return account.ErrEmailExists
		}
		if row.Nickname == acc.Nickname {
			return account.ErrNicknameExists
		}
	}
	return nil
}

func store(acc account.Account) *account.Account {
	acc.Load(nil, nil) // sets are stored in the join tables
	return &acc
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account, _ ...core.DBExecutor) (account.Account, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	acc.ID = 0
	if err := repo.checkUniqueness(acc); err != nil {
		return account.Account{}, err
	}
	acc.ID = repo.db.nextPK("account")
	repo.db.accounts[acc.ID] = store(acc)
	return repo.load(repo.db.accounts[acc.ID]), nil
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.accounts[acc.ID]; !ok {
		return account.ErrNotFound
	}
	if err := repo.checkUniqueness(acc); err != nil {
		return err
	}
	repo.db.accounts[acc.ID] = store(acc)
	return nil
}

func (repo *accountRepository) GetAccountByID(_ context.Context, id int, _ ...core.DBExecutor) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if row, ok := repo.db.accounts[id]; ok {
		return repo.load(row), nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) find(match func(row *account.Account) bool) (account.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, row := range repo.db.accounts {
		if match(row) {
			return repo.load(row), nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(_ context.Context, email string, _ ...core.DBExecutor) (account.Account, error) {
	return repo.find(func(row *account.Account) bool { return row.Email == email })
}

func (repo *accountRepository) GetAccountByNickname(_ context.Context, nickname string, _ ...core.DBExecutor) (account.Account, error) {
	return repo.find(func(row *account.Account) bool { return row.Nickname == nickname })
}

func (repo *accountRepository) ExistsByEmail(ctx context.Context, email string, _ ...core.DBExecutor) (bool, error) {
	return exists(repo.GetAccountByEmail(ctx, email))
}

func (repo *accountRepository) ExistsByNickname(ctx context.Context, nickname string, _ ...core.DBExecutor) (bool, error) {
	return exists(repo.GetAccountByNickname(ctx, nickname))
}

func exists(_ account.Account, err error) (bool, error) {
	switch err {
	case nil:
		return true, nil
	case account.ErrNotFound:
		return false, nil
	}
	return false, err
}

func (repo *accountRepository) CountAccounts(_ context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.accounts), nil
}

func (repo *accountRepository) link(l links, accountID, targetID int, add bool) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.accounts[accountID]; !ok {
		return account.ErrNotFound
	}
	if add {
		l.add(accountID, targetID)
	} else {
		l.remove(accountID, targetID)
	}
	return nil
}

func (repo *accountRepository) AddAccountTag(_ context.Context, accountID, tagID int, _ ...core.DBExecutor) error {
	return repo.link(repo.db.accountTags, accountID, tagID, true)
}

func (repo *accountRepository) RemoveAccountTag(_ context.Context, accountID, tagID int, _ ...core.DBExecutor) error {
	return repo.link(repo.db.accountTags, accountID, tagID, false)
}

func (repo *accountRepository) AddAccountZone(_ context.Context, accountID, zoneID int, _ ...core.DBExecutor) error {
	return repo.link(repo.db.accountZones, accountID, zoneID, true)
}

func (repo *accountRepository) RemoveAccountZone(_ context.Context, accountID, zoneID int, _ ...core.DBExecutor) error {
	return repo.link(repo.db.accountZones, accountID, zoneID, false)
}
