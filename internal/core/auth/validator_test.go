package auth

import (
	"testing"

	"lorryadmin/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "longenough", domain.ErrEmptyField},
		{"empty password", "a@b.com", "", domain.ErrEmptyField},
		{"both empty", "", "", domain.ErrEmptyField},
		{"empty field wins over short password", "", "abc", domain.ErrEmptyField},
		{"no at sign", "not-an-email", "longenough", domain.ErrInvalidEmailFormat},
		{"no local part", "@example.com", "longenough", domain.ErrInvalidEmailFormat},
		{"domain without dot", "a@b", "longenough", domain.ErrInvalidEmailFormat},
		{"space in local part", "a b@example.com", "longenough", domain.ErrInvalidEmailFormat},
		{"email checked before length", "a@b", "abc", domain.ErrInvalidEmailFormat},
		{"short password", "a@b.com", "short", domain.ErrPasswordTooShort},
		{"one character", "a@b.com", "x", domain.ErrPasswordTooShort},
		{"exactly six", "a@b.com", "123456", nil},
		{"valid", "user.name@example.co", "longenough", nil},
		{"multibyte counts code points", "a@b.com", "ééééé", domain.ErrPasswordTooShort},
		{"multibyte six", "a@b.com", "éééééé", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLogin(tt.email, tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name                     string
		email, password, confirm string
		want                     error
	}{
		{"empty confirm", "a@b.com", "secret1", "", domain.ErrEmptyField},
		{"bad email", "a.b.com", "secret1", "secret1", domain.ErrInvalidEmailFormat},
		{"short password", "a@b.com", "abc", "abc", domain.ErrPasswordTooShort},
		{"mismatch with valid lengths", "a@b.com", "secret1", "secret2", domain.ErrPasswordMismatch},
		{"mismatch differing case", "a@b.com", "Secret1", "secret1", domain.ErrPasswordMismatch},
		{"valid", "a@b.com", "secret1", "secret1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.email, tt.password, tt.confirm)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestShortPasswordWithValidEmails(t *testing.T) {
	emails := []string{"a@b.com", "first.last@sub.example.org", "x+tag@mail.io"}
	passwords := []string{"a", "ab", "abc", "abcd", "abcde"}

	for _, e := range emails {
		for _, p := range passwords {
			assert.ErrorIs(t, ValidateLogin(e, p), domain.ErrPasswordTooShort, "%s/%s", e, p)
			assert.ErrorIs(t, ValidateRegistration(e, p, p), domain.ErrPasswordTooShort, "%s/%s", e, p)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	assert.ErrorIs(t, ValidateEmail(""), domain.ErrEmptyField)
	assert.ErrorIs(t, ValidateEmail("nope"), domain.ErrInvalidEmailFormat)
	assert.NoError(t, ValidateEmail("a@b.com"))
}
