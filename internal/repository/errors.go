// Package repository implements the MySQL-backed stores for users,
// refresh tokens and messages. Sentinel errors defined here let the
// handler layer translate store failures into specific HTTP
// responses without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered. Handlers translate it into an HTTP 400.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenReuse is returned by TokenRepo.Rotate when the presented
// refresh token no longer matches any stored row: it was already
// rotated (or its owner withdrew) and is being replayed. Handlers
// translate it into an HTTP 401.
var ErrTokenReuse = errors.New("refresh token was already used")

// ErrMessageNotFound is returned when no message row matches the lookup.
var ErrMessageNotFound = errors.New("message not found")
