// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth implements the single-admin authentication model: credential
// checks against configured values, stateless signed session tokens, and the
// per-request Context passed explicitly into every content operation.
package auth

// RoleAdmin is the only role a token is ever issued with.
const RoleAdmin = "admin"

// Context describes who is making a request. It is produced once per
// request by the routing layer and passed by value to the content service.
type Context struct {
	Authenticated bool
	Role          string
	Username      string
}

// Anonymous is the Context of a visitor without a valid session.
var Anonymous = Context{}

// IsAdmin reports whether the caller holds an admin session.
func (c Context) IsAdmin() bool {
	return c.Authenticated && c.Role == RoleAdmin
}

// FromClaims builds the Context for a validated token.
func FromClaims(c *Claims) Context {
	if c == nil {
		return Anonymous
	}
	return Context{Authenticated: true, Role: c.Role, Username: c.Username}
}
