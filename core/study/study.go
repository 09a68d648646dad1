package study

import (
	"context"
	"regexp"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound   = errors.New("study not found")
	ErrPathExists = errors.New("a study with this path already exists")

	studyPathTag   = "studypath"
	studyPathText  = "path must be 2 to 20 lowercase letters, korean letters, digits, '_' or '-'"
	studyPathRegex = regexp.MustCompile(`^[ㄱ-ㅎ가-힣a-z0-9_-]{2,20}$`)

	pathExistsText = "this path is already in use"
)

// Load selects the associations loaded along with a study.
type Load uint8

const (
	LoadManagers Load = 1 << iota
	LoadMembers
	LoadTags
	LoadZones

	LoadAll = LoadManagers | LoadMembers | LoadTags | LoadZones
)

func (l Load) Has(flag Load) bool { return l&flag != 0 }

// Member is the public view of an account taking part in a study.
type Member struct {
	ID           int    `db:"id"`
	Nickname     string `db:"nickname"`
	ProfileImage string `db:"profile_image"`
}

type Study struct {
	ID               int
	Path             string
	Title            string
	ShortDescription string
	FullDescription  string
	Image            string
	Published        bool
	Recruiting       bool
	Closed           bool
	CreatedAt        time.Time // UTC

	Managers []Member
	Members  []Member
	Tags     []tag.Tag
	Zones    []zone.Zone
}

func (s *Study) AddManager(acc account.Account) {
	if s.IsManager(acc) {
		return
	}
	s.Managers = append(s.Managers, Member{ID: acc.ID, Nickname: acc.Nickname, ProfileImage: acc.Profile.ProfileImage})
}

func (s Study) IsManager(acc account.Account) bool {
	for _, m := range s.Managers {
		if m.ID == acc.ID {
			return true
		}
	}
	return false
}

func (s Study) IsMember(acc account.Account) bool {
	for _, m := range s.Members {
		if m.ID == acc.ID {
			return true
		}
	}
	return false
}

type StudyForm struct {
	Path             string `form:"path" validate:"required,studypath"`
	Title            string `form:"title" validate:"required,max=50"`
	ShortDescription string `form:"shortDescription" validate:"required,max=100"`
	FullDescription  string `form:"fullDescription" validate:"required"`
}

func (f *StudyForm) Clean() {
	f.Path = core.CleanString(f.Path)
	f.Title = core.CleanString(f.Title)
	f.ShortDescription = core.CleanString(f.ShortDescription)
}

func (f StudyForm) Study() Study {
	return Study{
		Path:             f.Path,
		Title:            f.Title,
		ShortDescription: f.ShortDescription,
		FullDescription:  f.FullDescription,
	}
}

// RegisterValidators registers the study validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterRegexValidation(validate, translator, studyPathTag, studyPathText, studyPathRegex)
}

type (
	Repository interface {
		// CreateStudy returns ErrPathExists when the path is already taken.
		CreateStudy(ctx context.Context, s Study, exec ...core.DBExecutor) (Study, error)
		AddStudyManager(ctx context.Context, studyID, accountID int, exec ...core.DBExecutor) error
		ExistsByPath(ctx context.Context, path string, exec ...core.DBExecutor) (bool, error)
		GetStudyByPath(ctx context.Context, path string, load Load, exec ...core.DBExecutor) (Study, error)
	}

	Service struct {
		repo     Repository
		tx       core.TxRunner
		validate *validator.Validate
	}
)

func NewService(repo Repository, tx core.TxRunner, validate *validator.Validate) *Service {
	return &Service{repo: repo, tx: tx, validate: validate}
}

// ValidateForm checks the form fields and the availability of its path.
func (svc *Service) ValidateForm(ctx context.Context, form *StudyForm) error {
	form.Clean()
	if err := svc.validate.Struct(form); err != nil {
		return err
	}
	exists, err := svc.repo.ExistsByPath(ctx, form.Path)
	if err != nil {
		return errors.Wrap(err, "checking path")
	}
	if exists {
		return core.NewValidationError(nil, core.FieldError{Field: "path", Error: pathExistsText})
	}
	return nil
}

// CreateNewStudy stores s and makes acc its first manager.
// Path availability is not checked here: a taken path fails in the store with ErrPathExists.
func (svc *Service) CreateNewStudy(ctx context.Context, s Study, acc account.Account) (Study, error) {
	var created Study
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		s.CreatedAt = NowFunc().UTC()
		var err error
		created, err = svc.repo.CreateStudy(ctx, s, exec)
		if err != nil {
			return errors.Wrap(err, "creating study")
		}
		if err = svc.repo.AddStudyManager(ctx, created.ID, acc.ID, exec); err != nil {
			return errors.Wrap(err, "adding manager")
		}
		created.AddManager(acc)
		return nil
	})
	if err != nil {
		return Study{}, err
	}
	return created, nil
}

func (svc *Service) ExistsByPath(ctx context.Context, path string) (bool, error) {
	return svc.repo.ExistsByPath(ctx, path)
}

// GetByPath returns the study with all its associations.
func (svc *Service) GetByPath(ctx context.Context, path string) (Study, error) {
	return svc.repo.GetStudyByPath(ctx, path, LoadAll)
}

func (svc *Service) GetWithTagsByPath(ctx context.Context, path string) (Study, error) {
	return svc.repo.GetStudyByPath(ctx, path, LoadTags|LoadManagers)
}

func (svc *Service) GetWithZonesByPath(ctx context.Context, path string) (Study, error) {
	return svc.repo.GetStudyByPath(ctx, path, LoadZones|LoadManagers)
}

func (svc *Service) GetWithManagersByPath(ctx context.Context, path string) (Study, error) {
	return svc.repo.GetStudyByPath(ctx, path, LoadManagers)
}
