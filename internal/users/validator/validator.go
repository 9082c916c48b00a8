// Package validator checks user input before it reaches a store.
package validator

import "userdir/internal/users/models"

const (
	FieldNickname = "nickname"
	FieldEmail    = "email"

	// minNicknameLength is exclusive: a nickname must be longer than this.
	minNicknameLength = 4

	MsgNicknameEmpty = "Nickname is empty"
	MsgNicknameShort = "Nickname must be greater than 4 characters"
	MsgEmailEmpty    = "Email is empty"
)

// Validate checks every field independently and returns all failures.
// Nickname length is measured in bytes.
func Validate(in models.UserInput) models.ValidationErrors {
	errs := models.ValidationErrors{}

	switch {
	case in.Nickname == "":
		errs[FieldNickname] = MsgNicknameEmpty
	case len(in.Nickname) <= minNicknameLength:
		errs[FieldNickname] = MsgNicknameShort
	}

	if in.Email == "" {
		errs[FieldEmail] = MsgEmailEmpty
	}

	return errs
}
