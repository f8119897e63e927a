package auth

import (
	"strings"
	"unicode/utf8"

	"lorryadmin/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateLogin checks, in order: empty fields, email shape, password length.
func ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return domain.ErrEmptyField
	}
	if err := checkEmail(email); err != nil {
		return err
	}
	return checkPassword(password)
}

// ValidateRegistration runs the login rules and then the confirmation match.
func ValidateRegistration(email, password, confirm string) error {
	if email == "" || password == "" || confirm == "" {
		return domain.ErrEmptyField
	}
	if err := checkEmail(email); err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	if password != confirm {
		return domain.ErrPasswordMismatch
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return domain.ErrEmptyField
	}
	return checkEmail(email)
}

func checkEmail(email string) error {
	if err := validate.Var(email, "email"); err != nil {
		return domain.ErrInvalidEmailFormat
	}

	at := strings.LastIndexByte(email, '@')
	domainPart := email[at+1:]
	dot := strings.IndexByte(domainPart, '.')
	if dot <= 0 || dot == len(domainPart)-1 {
		return domain.ErrInvalidEmailFormat
	}
	return nil
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	return nil
}
