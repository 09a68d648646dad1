package core

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testForm struct {
	Name     string `form:"name" validate:"required"`
	Slug     string `json:"slug" validate:"omitempty,slug"`
	Password string `form:"password"`
	Confirm  string `form:"confirm" validate:"eqfield=Password"`
	Other    string `validate:"required_without=Name"`
}

func TestValidators(t *testing.T) {
	validate, translator := NewValidator()
	RegisterRegexValidation(validate, translator, "slug", "{0} must be a slug", regexp.MustCompile(`^[a-z-]+$`))

	tests := []struct {
		name    string
		form    testForm
		wantErr map[string]string
	}{
		{name: "valid", form: testForm{Name: "kim", Slug: "a-b", Password: "pwd", Confirm: "pwd"}},
		{
			name: "required",
			form: testForm{},
			wantErr: map[string]string{
				"name":  "this field is required",
				"Other": "this field is required",
			},
		},
		{
			name:    "custom regex, json name",
			form:    testForm{Name: "kim", Slug: "A B"},
			wantErr: map[string]string{"slug": "slug must be a slug"},
		},
		{
			name:    "eqfield",
			form:    testForm{Name: "kim", Password: "pwd", Confirm: "lol"},
			wantErr: map[string]string{"confirm": "confirm does not match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.form)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errs, ok := FieldErrors(err, translator)
			require.True(t, ok)
			assert.Equal(t, tt.wantErr, errs)
		})
	}
}
