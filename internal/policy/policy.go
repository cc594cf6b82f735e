// Package policy holds the authorization predicates handlers invoke
// before any mutating or privacy-sensitive operation. They are plain
// functions rather than middleware so each handler states its own
// rule explicitly.
package policy

import "github.com/5nonymous/money-for-rabbit/internal/model"

// IsSelf reports whether the requester is acting on their own
// resources.
func IsSelf(requesterID, ownerID uint64) bool {
	return requesterID != 0 && requesterID == ownerID
}

// IsAdmin reports whether the user may use the moderation endpoints.
func IsAdmin(u model.User) bool {
	return u.IsAdmin
}
