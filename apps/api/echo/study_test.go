package echoapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chingu/core/study"
)

func studyData(path, title string) url.Values {
	return url.Values{
		"path":             {path},
		"title":            {title},
		"shortDescription": {"short"},
		"fullDescription":  {"full description"},
	}
}

func TestStudy_create(t *testing.T) {
	app := newTestApp(t)
	kim := app.createAccount(t, "kim@test.kr", "kim")
	lee := app.createAccount(t, "lee@test.kr", "lee")
	cookie := app.authCookie(t, kim)

	t.Run("form", func(t *testing.T) {
		rec := app.get("/new-study", cookie)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, readBody(t, rec), `name="fullDescription"`)
	})

	t.Run("success", func(t *testing.T) {
		rec := app.postForm("/new-study", studyData("go-study", "Go study"), cookie)

		assertRedirect(t, rec, "/study/go-study")
		s, err := app.studySvc.GetByPath(context.Background(), "go-study")
		require.NoError(t, err)
		assert.Equal(t, "Go study", s.Title)
		assert.True(t, s.IsManager(kim))
		assert.False(t, s.IsManager(lee))
	})

	tests := []struct {
		name    string
		data    url.Values
		wantErr string
	}{
		{name: "missing fields", data: url.Values{}, wantErr: "this field is required"},
		{name: "invalid path", data: studyData("Go Study", "Go"), wantErr: "path must be 2 to 20"},
		{name: "path taken", data: studyData("go-study", "Another"), wantErr: "this path is already in use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.postForm("/new-study", tt.data, cookie)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, readBody(t, rec), tt.wantErr)
		})
	}
}

func TestStudy_view(t *testing.T) {
	app := newTestApp(t)
	kim := app.createAccount(t, "kim@test.kr", "kim")
	lee := app.createAccount(t, "lee@test.kr", "lee")

	_, err := app.studySvc.CreateNewStudy(context.Background(), study.Study{
		Path:             "스터디",
		Title:            "Korean study",
		ShortDescription: "short",
		FullDescription:  "full",
	}, kim)
	require.NoError(t, err)

	tests := []struct {
		name      string
		authed    bool
		wantIn    string
		wantNotIn string
	}{
		{name: "anonymous", wantIn: "Korean study", wantNotIn: "You manage this study."},
		{name: "manager", authed: true, wantIn: "You manage this study."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookie *http.Cookie
			if tt.authed {
				cookie = app.authCookie(t, kim)
			}
			rec := app.get("/study/"+url.PathEscape("스터디"), cookie)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := readBody(t, rec)
			assert.Contains(t, body, tt.wantIn)
			assert.Contains(t, body, `href="/profile/kim"`)
			if tt.wantNotIn != "" {
				assert.NotContains(t, body, tt.wantNotIn)
			}
		})
	}

	t.Run("not a manager", func(t *testing.T) {
		rec := app.get("/study/"+url.PathEscape("스터디"), app.authCookie(t, lee))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, readBody(t, rec), "You manage this study.")
	})
}
