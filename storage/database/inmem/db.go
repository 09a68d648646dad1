package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/study"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

type (
	// DB is an in-memory store enforcing the same unique and foreign key constraints as the SQL schema.
	// A single lock guards all tables.
	DB struct {
		mutex sync.RWMutex
		txMu  sync.Mutex
		tables
	}

	tables struct {
		pk map[string]int

		accounts     map[int]*account.Account
		tags         map[int]tag.Tag
		zones        map[int]zone.Zone
		studies      map[int]*study.Study
		accountTags  links
		accountZones links
		studyManager links
		studyMember  links
		studyTags    links
		studyZones   links
	}

	// links is a many-to-many join table: {ownerID: {targetID}}.
	links map[int]map[int]struct{}
)

var _ core.TxRunner = (*DB)(nil)

func Open() *DB {
	return &DB{tables: tables{
		pk:           make(map[string]int),
		accounts:     make(map[int]*account.Account),
		tags:         make(map[int]tag.Tag),
		zones:        make(map[int]zone.Zone),
		studies:      make(map[int]*study.Study),
		accountTags:  make(links),
		accountZones: make(links),
		studyManager: make(links),
		studyMember:  make(links),
		studyTags:    make(links),
		studyZones:   make(links),
	}}
}

// RunInTx serializes fn with the other transactions.
// The tables are restored to their previous state when fn fails or panics.
func (db *DB) RunInTx(_ context.Context, fn func(exec core.DBExecutor) error) (err error) {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mutex.RLock()
	snapshot := db.tables.clone()
	db.mutex.RUnlock()

	rollback := func() {
		db.mutex.Lock()
		db.tables = snapshot
		db.mutex.Unlock()
	}
	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(nil); err != nil {
		rollback()
	}
	return err
}

// clone must be called with a lock held.
func (t tables) clone() tables {
	c := tables{
		pk:           make(map[string]int, len(t.pk)),
		accounts:     make(map[int]*account.Account, len(t.accounts)),
		tags:         make(map[int]tag.Tag, len(t.tags)),
		zones:        make(map[int]zone.Zone, len(t.zones)),
		studies:      make(map[int]*study.Study, len(t.studies)),
		accountTags:  t.accountTags.clone(),
		accountZones: t.accountZones.clone(),
		studyManager: t.studyManager.clone(),
		studyMember:  t.studyMember.clone(),
		studyTags:    t.studyTags.clone(),
		studyZones:   t.studyZones.clone(),
	}
	for k, v := range t.pk {
		c.pk[k] = v
	}
	for id, acc := range t.accounts {
		cp := *acc
		c.accounts[id] = &cp
	}
	for id, tg := range t.tags {
		c.tags[id] = tg
	}
	for id, z := range t.zones {
		c.zones[id] = z
	}
	for id, s := range t.studies {
		cp := *s
		c.studies[id] = &cp
	}
	return c
}

func (l links) clone() links {
	c := make(links, len(l))
	for owner, targets := range l {
		c[owner] = make(map[int]struct{}, len(targets))
		for id := range targets {
			c[owner][id] = struct{}{}
		}
	}
	return c
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.pk[table]++
	return db.pk[table]
}

func (l links) add(owner, target int) {
	if l[owner] == nil {
		l[owner] = make(map[int]struct{})
	}
	l[owner][target] = struct{}{}
}

func (l links) remove(owner, target int) {
	delete(l[owner], target)
}

func (l links) ids(owner int) []int {
	ids := make([]int, 0, len(l[owner]))
	for id := range l[owner] {
		ids = append(ids, id)
	}
	return ids
}
