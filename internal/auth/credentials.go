// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// Credentials are the configured admin account. Password may be plain text
// or a bcrypt hash.
type Credentials struct {
	Username   string
	Password   string
	TOTPSecret string
}

// TwoFactorEnabled reports whether login requires a TOTP code.
func (c Credentials) TwoFactorEnabled() bool {
	return c.TOTPSecret != ""
}

// Check reports whether the submitted values match the admin account.
// code is ignored unless a TOTP secret is configured.
func (c Credentials) Check(username, password, code string) bool {
	if c.Username == "" || c.Password == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := c.checkPassword(password)
	if !userOK || !passOK {
		return false
	}

	if c.TwoFactorEnabled() {
		return totp.Validate(strings.TrimSpace(code), c.TOTPSecret)
	}
	return true
}

func (c Credentials) checkPassword(password string) bool {
	if IsBcryptHash(c.Password) {
		return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
}

// IsBcryptHash reports whether s looks like a bcrypt hash.
func IsBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
