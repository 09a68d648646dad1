package tag

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
)

var (
	// errors
	ErrNotFound    = errors.New("tag not found")
	ErrTitleExists = errors.New("a tag with this title already exists")
)

type Tag struct {
	ID    int    `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// TagForm is the JSON payload of the tag add/remove endpoints.
type TagForm struct {
	TagTitle string `json:"tagTitle" validate:"required,max=20"`
}

func (f *TagForm) Clean() {
	f.TagTitle = core.CleanString(f.TagTitle)
}

type (
	Repository interface {
		// CreateTag returns ErrTitleExists when the store already holds a tag with the same title.
		CreateTag(ctx context.Context, t Tag, exec ...core.DBExecutor) (Tag, error)
		GetTagByTitle(ctx context.Context, title string, exec ...core.DBExecutor) (Tag, error)
		QueryAllTags(ctx context.Context, exec ...core.DBExecutor) ([]Tag, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FindOrCreateNew returns the tag titled `title`, creating it if needed.
// The store's unique constraint on title settles concurrent creations: the loser re-reads the winner's row.
func (svc *Service) FindOrCreateNew(ctx context.Context, title string, exec ...core.DBExecutor) (Tag, error) {
	title = core.CleanString(title)
	t, err := svc.repo.GetTagByTitle(ctx, title, exec...)
	if err == nil {
		return t, nil
	}
	if err != ErrNotFound {
		return Tag{}, errors.Wrap(err, "getting tag")
	}

	t, err = svc.repo.CreateTag(ctx, Tag{Title: title}, exec...)
	if err == ErrTitleExists {
		t, err = svc.repo.GetTagByTitle(ctx, title, exec...)
	}
	if err != nil {
		return Tag{}, errors.Wrap(err, "creating tag")
	}
	return t, nil
}

func (svc *Service) GetByTitle(ctx context.Context, title string, exec ...core.DBExecutor) (Tag, error) {
	return svc.repo.GetTagByTitle(ctx, core.CleanString(title), exec...)
}

// AllTitles returns the titles of all known tags, sorted.
func (svc *Service) AllTitles(ctx context.Context) ([]string, error) {
	tags, err := svc.repo.QueryAllTags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying tags")
	}
	return Titles(tags), nil
}

// Titles returns the sorted titles of tags.
func Titles(tags []Tag) []string {
	titles := make([]string, 0, len(tags))
	for _, t := range tags {
		titles = append(titles, t.Title)
	}
	sort.Strings(titles)
	return titles
}
