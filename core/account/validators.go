package account

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chingu/core"
)

var (
	nicknameTag   = "nickname"
	nicknameText  = "nickname must be 3 to 20 lowercase letters, korean letters, digits, '_' or '-'"
	nicknameRegex = regexp.MustCompile(`^[ㄱ-ㅎ가-힣a-z0-9_-]{3,20}$`)

	// field errors
	emailExistsText    = "this email is already in use"
	nicknameExistsText = "this nickname is already in use"
)

// RegisterValidators registers the account validation tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterRegexValidation(validate, translator, nicknameTag, nicknameText, nicknameRegex)
}
