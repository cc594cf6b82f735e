// Package queue defines the payloads exchanged over the message
// broker and the background consumer that turns them into email.
package queue

// UserRegisteredQueue is the durable queue carrying registration
// events from the API to the mail consumer.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published after a successful registration.
// The consumer needs nothing beyond this payload to deliver the
// confirmation mail; it never queries the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	ConfirmURL   string `json:"confirm_url"`
	RegisteredAt string `json:"registered_at"`
}
