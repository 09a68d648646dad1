package echoapi

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlash(t *testing.T) {
	app := newTestApp(t)
	acc := app.createAccount(t, "kim@test.kr", "kim")
	cookie := app.authCookie(t, acc)

	rec := app.postForm("/settings/profile", url.Values{"bio": {"hello"}}, cookie)
	assertRedirect(t, rec, "/settings/profile")
	session := findCookie(rec, app.conf.Server.SessionName)
	require.NotNil(t, session)

	rec = app.postForm("/settings/notifications", url.Values{"studyCreatedByWeb": {"true"}}, cookie, session)
	assertRedirect(t, rec, "/settings/notifications")
	session = findCookie(rec, app.conf.Server.SessionName)
	require.NotNil(t, session)

	// error pages leave the messages pending
	rec = app.get("/profile/nobody", cookie, session)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := readBody(t, rec)
	assert.NotContains(t, body, "Profile updated.")
	assert.Nil(t, findCookie(rec, app.conf.Server.SessionName))

	rec = app.get("/settings/profile", cookie, session)
	assert.Equal(t, http.StatusOK, rec.Code)
	body = readBody(t, rec)
	assert.Equal(t, 1, strings.Count(body, "Profile updated."))
	assert.Equal(t, 1, strings.Count(body, "Notification settings updated."))
	assert.Less(t, strings.Index(body, "Profile updated."), strings.Index(body, "Notification settings updated."))

	// displayed once
	session = findCookie(rec, app.conf.Server.SessionName)
	require.NotNil(t, session)
	rec = app.get("/settings/profile", cookie, session)
	assert.NotContains(t, readBody(t, rec), "updated.")
}
