package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFieldErrors(t *testing.T) {
	_, translator := NewValidator()
	errBoom := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		want   map[string]string
		wantOk bool
	}{
		{name: "nil", err: nil},
		{name: "other error", err: errBoom},
		{
			name:   "fields",
			err:    NewValidationError(nil, FieldError{Field: "email", Error: "taken"}, FieldError{Field: "nickname", Error: "taken too"}),
			want:   map[string]string{"email": "taken", "nickname": "taken too"},
			wantOk: true,
		},
		{
			name:   "wrapped",
			err:    errors.Wrap(NewValidationError(nil, FieldError{Field: "path", Error: "taken"}), "validating"),
			want:   map[string]string{"path": "taken"},
			wantOk: true,
		},
		{
			name:   "no field",
			err:    NewValidationError(errBoom),
			want:   map[string]string{"": "boom"},
			wantOk: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FieldErrors(tt.err, translator)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "boom", NewValidationError(errors.New("boom")).Error())
	assert.Equal(t, "email: taken", NewValidationError(nil, FieldError{Field: "email", Error: "taken"}).Error())
	assert.Equal(t, "", NewValidationError(nil).Error())
}

func TestIsShutdown(t *testing.T) {
	assert.True(t, IsShutdown(NewShutdownError("integrity issue")))
	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("integrity issue"), "wrapped")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Kim", CleanString("  Kim \n"))
	assert.Equal(t, "kim@test.kr", CleanString(" Kim@Test.KR ", true))
}
