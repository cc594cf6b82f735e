package model

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Denominations lists the banknote amounts a plain (non-envelope)
// message may carry. An envelope (moneybag) is exempt and may hold
// any amount.
var Denominations = []int64{100, 500, 1000, 5000, 10000, 50000}

const maxMessageLen = 150

var (
	ErrEmptyMessage   = errors.New("message content must not be empty")
	ErrMessageTooLong = errors.New("message content must be 150 characters or fewer")
	ErrInvalidAmount  = errors.New("amount must be one of 100, 500, 1000, 5000, 10000 or 50000 unless sent in an envelope")
)

// Message is a gift-money note left for a user, as stored in the
// `messages` table. AuthorID is nullable: when the author withdraws,
// the column is set to NULL and the note survives anonymously.
// Received messages are deleted together with their recipient.
type Message struct {
	ID         uint64    // messages.id
	Message    string    // messages.message
	Amount     int64     // messages.amount
	IsMoneybag bool      // messages.is_moneybag
	AuthorID   *uint64   // messages.author_id (nullable, SET NULL on author delete)
	UserID     uint64    // messages.user_id (recipient, CASCADE on delete)
	CreatedAt  time.Time // messages.created_at
}

// NewMessage validates and builds a Message. A non-envelope amount
// must be one of Denominations; any amount is accepted inside an
// envelope.
func NewMessage(content string, amount int64, isMoneybag bool, authorID uint64, recipientID uint64) (Message, error) {
	if content == "" {
		return Message{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return Message{}, ErrMessageTooLong
	}
	if !isMoneybag && !validDenomination(amount) {
		return Message{}, ErrInvalidAmount
	}
	author := authorID
	return Message{
		Message:    content,
		Amount:     amount,
		IsMoneybag: isMoneybag,
		AuthorID:   &author,
		UserID:     recipientID,
	}, nil
}

func validDenomination(amount int64) bool {
	for _, d := range Denominations {
		if amount == d {
			return true
		}
	}
	return false
}
