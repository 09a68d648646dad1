package account

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

// confirmEmailInterval is the minimum delay between two verification emails.
const confirmEmailInterval = time.Hour

var NowFunc = time.Now // mockable

type Account struct {
	ID           int
	Email        string
	Nickname     string
	PasswordHash []byte

	EmailVerified              bool
	EmailCheckToken            string
	EmailCheckTokenGeneratedAt time.Time // UTC
	JoinedAt                   time.Time // UTC; zero until the email is verified

	Profile       Profile
	Notifications Notifications

	tags  map[int]tag.Tag
	zones map[int]zone.Zone
}

// New returns an unverified account with the default notification settings.
func New(email, nickname string) Account {
	return Account{
		Email:         email,
		Nickname:      nickname,
		Notifications: DefaultNotifications(),
	}
}

// LogPerson identifies the account in log reports.
func (a Account) LogPerson() (id, username, email string) {
	return strconv.Itoa(a.ID), a.Nickname, a.Email
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) GenerateEmailCheckToken() {
	a.EmailCheckToken = uuid.New().String()
	a.EmailCheckTokenGeneratedAt = NowFunc().UTC()
}

func (a Account) IsValidToken(token string) bool {
	return a.EmailCheckToken != "" && a.EmailCheckToken == token
}

// CanSendConfirmEmail reports whether the last verification email was sent long enough ago.
func (a Account) CanSendConfirmEmail() bool {
	return a.EmailCheckTokenGeneratedAt.Before(NowFunc().UTC().Add(-confirmEmailInterval))
}

func (a *Account) CompleteSignUp() {
	a.EmailVerified = true
	a.JoinedAt = NowFunc().UTC()
}

func (a *Account) UpdateProfile(p Profile) {
	a.Profile = p
}

func (a *Account) UpdateNotifications(n Notifications) {
	a.Notifications = n
}

func (a *Account) Rename(nickname string) {
	a.Nickname = nickname
}

// Tags returns the account's tags, sorted by title.
func (a Account) Tags() []tag.Tag {
	tags := make([]tag.Tag, 0, len(a.tags))
	for _, t := range a.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Title < tags[j].Title })
	return tags
}

func (a Account) HasTag(t tag.Tag) bool {
	_, ok := a.tags[t.ID]
	return ok
}

// AddTag reports whether t was not already in the set.
func (a *Account) AddTag(t tag.Tag) bool {
	if a.tags == nil {
		a.tags = make(map[int]tag.Tag)
	}
	if _, ok := a.tags[t.ID]; ok {
		return false
	}
	a.tags[t.ID] = t
	return true
}

// RemoveTag reports whether t was in the set.
func (a *Account) RemoveTag(t tag.Tag) bool {
	if _, ok := a.tags[t.ID]; !ok {
		return false
	}
	delete(a.tags, t.ID)
	return true
}

// Zones returns the account's zones, sorted by display name.
func (a Account) Zones() []zone.Zone {
	zones := make([]zone.Zone, 0, len(a.zones))
	for _, z := range a.zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].String() < zones[j].String() })
	return zones
}

func (a Account) HasZone(z zone.Zone) bool {
	_, ok := a.zones[z.ID]
	return ok
}

// AddZone reports whether z was not already in the set.
func (a *Account) AddZone(z zone.Zone) bool {
	if a.zones == nil {
		a.zones = make(map[int]zone.Zone)
	}
	if _, ok := a.zones[z.ID]; ok {
		return false
	}
	a.zones[z.ID] = z
	return true
}

// RemoveZone reports whether z was in the set.
func (a *Account) RemoveZone(z zone.Zone) bool {
	if _, ok := a.zones[z.ID]; !ok {
		return false
	}
	delete(a.zones, z.ID)
	return true
}

// Load replaces the account's tag and zone sets with the stored ones. Used by repositories.
func (a *Account) Load(tags []tag.Tag, zones []zone.Zone) {
	a.tags = make(map[int]tag.Tag, len(tags))
	for _, t := range tags {
		a.tags[t.ID] = t
	}
	a.zones = make(map[int]zone.Zone, len(zones))
	for _, z := range zones {
		a.zones[z.ID] = z
	}
}

// Profile holds the public profile of an account and is the profile settings form.
type Profile struct {
	Bio          string `form:"bio" validate:"max=35"`
	URL          string `form:"url" validate:"max=50"`
	Occupation   string `form:"occupation" validate:"max=50"`
	Location     string `form:"location" validate:"max=50"`
	Company      string `form:"company" validate:"max=50"`
	ProfileImage string `form:"profileImage" validate:"max=1048576"` // base64 data URL
}

func (p *Profile) Clean() {
	p.Bio = core.CleanString(p.Bio)
	p.URL = core.CleanString(p.URL)
	p.Occupation = core.CleanString(p.Occupation)
	p.Location = core.CleanString(p.Location)
	p.Company = core.CleanString(p.Company)
}

// Notifications holds the notification settings of an account and is the notifications settings form.
type Notifications struct {
	StudyCreatedByEmail          bool `form:"studyCreatedByEmail"`
	StudyCreatedByWeb            bool `form:"studyCreatedByWeb"`
	StudyEnrollmentResultByEmail bool `form:"studyEnrollmentResultByEmail"`
	StudyEnrollmentResultByWeb   bool `form:"studyEnrollmentResultByWeb"`
	StudyUpdatedByEmail          bool `form:"studyUpdatedByEmail"`
	StudyUpdatedByWeb            bool `form:"studyUpdatedByWeb"`
}

// DefaultNotifications enables web notifications only.
func DefaultNotifications() Notifications {
	return Notifications{
		StudyCreatedByWeb:          true,
		StudyEnrollmentResultByWeb: true,
		StudyUpdatedByWeb:          true,
	}
}

type SignUpForm struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	Nickname string `form:"nickname" validate:"required,nickname"`
	Password string `form:"password" validate:"required,min=8,max=50"`
}

func (f *SignUpForm) Clean() {
	f.Email = core.CleanString(f.Email, true /* lower */)
	f.Nickname = core.CleanString(f.Nickname)
}

type PasswordForm struct {
	NewPassword        string `form:"newPassword" validate:"required,min=8,max=50"`
	NewPasswordConfirm string `form:"newPasswordConfirm" validate:"required,min=8,max=50,eqfield=NewPassword"`
}

type NicknameForm struct {
	Nickname string `form:"nickname" validate:"required,nickname"`
}

func (f *NicknameForm) Clean() {
	f.Nickname = core.CleanString(f.Nickname)
}

// LoginForm accepts either the email or the nickname as Username.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (f *LoginForm) Clean() {
	f.Username = core.CleanString(f.Username)
}
