package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
)

const contextAccountKey = "account"

var errInvalidToken = errors.New("invalid token")

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Nickname string `json:"nickname,omitempty"`
	Email    string `json:"email,omitempty"`
}

func GetAccountClaims(acc account.Account, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(acc.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Nickname: acc.Nickname,
		Email:    acc.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(tokenStr, secret string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// login sets the auth cookie of acc and makes it the context account.
func (s *server) login(ctx echo.Context, acc account.Account) error {
	token, err := GenerateToken(GetAccountClaims(acc, s.deps.Conf), s.deps.Conf.SecretKey)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     s.deps.Conf.Server.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.deps.Conf.Server.JWTExpirationDelta),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	ctx.Set(contextAccountKey, acc)
	return nil
}

func (s *server) logout(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     s.deps.Conf.Server.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	ctx.Set(contextAccountKey, nil)
}

// loadAccountMiddleware resolves the authenticated account once per request.
// Requests without a valid token go on anonymously.
func (s *server) loadAccountMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(s.deps.Conf.Server.AuthCookieName)
		if err != nil || cookie.Value == "" {
			return next(ctx)
		}
		claims, err := parseToken(cookie.Value, s.deps.Conf.SecretKey)
		if err != nil {
			s.logout(ctx)
			return next(ctx)
		}
		id, err := strconv.Atoi(claims.Subject)
		if err != nil {
			s.logout(ctx)
			return next(ctx)
		}
		acc, err := s.deps.AccountSvc.GetByID(ctx.Request().Context(), id)
		switch err {
		case nil:
			ctx.Set(contextAccountKey, acc)
		case account.ErrNotFound:
			s.logout(ctx)
		default:
			return errors.Wrap(err, "getting context account")
		}
		return next(ctx)
	}
}

func getContextAccount(ctx echo.Context) (account.Account, bool) {
	acc, ok := ctx.Get(contextAccountKey).(account.Account)
	return acc, ok
}

// accountHandler is a handler requiring the authenticated account.
type accountHandler func(ctx echo.Context, acc account.Account) error

// authed passes the authenticated account to h, or redirects anonymous requests to the login page.
func authed(h accountHandler) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		acc, ok := getContextAccount(ctx)
		if !ok {
			return ctx.Redirect(http.StatusFound, "/login")
		}
		return h(ctx, acc)
	}
}
