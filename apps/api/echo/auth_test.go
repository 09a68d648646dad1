package echoapi

import (
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
)

func Test_parseToken(t *testing.T) {
	conf := core.NewTestConfig()
	acc := account.New("kim@test.kr", "kim")
	acc.ID = 7

	valid, err := GenerateToken(GetAccountClaims(acc, conf), conf.SecretKey)
	require.NoError(t, err)

	wrongSecret, err := GenerateToken(GetAccountClaims(acc, conf), "lol")
	require.NoError(t, err)

	expiredClaims := GetAccountClaims(acc, conf)
	expiredClaims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	expired, err := GenerateToken(expiredClaims, conf.SecretKey)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, GetAccountClaims(acc, conf)).SignedString([]byte(conf.SecretKey))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: valid},
		{name: "garbage", token: "lol", wantErr: true},
		{name: "wrong secret", token: wrongSecret, wantErr: true},
		{name: "expired", token: expired, wantErr: true},
		{name: "other signing method", token: hs512, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := parseToken(tt.token, conf.SecretKey)

			if tt.wantErr {
				assert.Equal(t, errInvalidToken, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strconv.Itoa(acc.ID), claims.Subject)
			assert.Equal(t, "kim", claims.Nickname)
			assert.Equal(t, "kim@test.kr", claims.Email)
			assert.Equal(t, conf.AppName, claims.Issuer)
		})
	}
}
