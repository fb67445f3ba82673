package person

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	PasswordMinimumLength = 8
	// PasswordMaximumBytes is the bcrypt input limit.
	PasswordMaximumBytes = 72
)

var (
	ErrPasswordRequired                    = errors.New("password is required")
	ErrPasswordTooLong                     = fmt.Errorf("password must be at most %d bytes", PasswordMaximumBytes)
	ErrPasswordNotAlphanumeric             = errors.New("password must contain letters and digits")
	ErrPasswordDoesNotHaveSpecialCharacter = errors.New("password does not contain special characters")
	ErrPasswordShouldBeNCharacters         = fmt.Errorf("password should be at least %d characters", PasswordMinimumLength)
)

const specialCharacters = "!@#$%^&*()-_=+[]{}|;:'\",.<>?/`~"

// PasswordPolicy validates new and changed passwords. The byte limit always
// applies; the composition rules of CheckPassword only when Strict is set.
type PasswordPolicy struct {
	Strict bool
}

func (p PasswordPolicy) Check(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) > PasswordMaximumBytes {
		return ErrPasswordTooLong
	}
	if p.Strict {
		return CheckPassword(password)
	}
	return nil
}

// CheckPassword enforces the strict composition rules.
func CheckPassword(password string) error {
	if len(password) < PasswordMinimumLength {
		return ErrPasswordShouldBeNCharacters
	}
	if !hasLetterAndDigit(password) {
		return ErrPasswordNotAlphanumeric
	}
	if !strings.ContainsAny(password, specialCharacters) {
		return ErrPasswordDoesNotHaveSpecialCharacter
	}
	return nil
}

func hasLetterAndDigit(password string) bool {
	var letter, digit bool
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			letter = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	return letter && digit
}
