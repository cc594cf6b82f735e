package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/5nonymous/money-for-rabbit/internal/model"
)

// MessageRepo persists gift-money messages in the `messages` table.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

const messageColumns = "id,message,amount,is_moneybag,author_id,user_id,created_at"

// Create inserts a validated message and returns its id.
func (r *MessageRepo) Create(ctx context.Context, m model.Message) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (message, amount, is_moneybag, author_id, user_id) VALUES (?,?,?,?,?)",
		m.Message, m.Amount, m.IsMoneybag, m.AuthorID, m.UserID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single message.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	var (
		m      model.Message
		author sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id=? LIMIT 1", id).
		Scan(&m.ID, &m.Message, &m.Amount, &m.IsMoneybag, &author, &m.UserID, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return model.Message{}, err
	}
	if author.Valid {
		v := uint64(author.Int64)
		m.AuthorID = &v
	}
	return m, nil
}

// ListByRecipient returns one page of a user's received messages,
// newest first, plus the total number of messages the user has.
func (r *MessageRepo) ListByRecipient(ctx context.Context, userID uint64, page, perPage int) ([]model.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE user_id=? ORDER BY id DESC LIMIT ? OFFSET ?",
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var (
			m      model.Message
			author sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Message, &m.Amount, &m.IsMoneybag, &author, &m.UserID, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		if author.Valid {
			v := uint64(author.Int64)
			m.AuthorID = &v
		}
		msgs = append(msgs, m)
	}
	return msgs, total, rows.Err()
}

// TotalAmount sums everything a user has received.
func (r *MessageRepo) TotalAmount(ctx context.Context, userID uint64) (int64, error) {
	var total int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount),0) FROM messages WHERE user_id=?", userID).Scan(&total)
	return total, err
}

// Count returns the number of stored messages.
func (r *MessageRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// Delete removes a message outright. Used by admin moderation.
func (r *MessageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM messages WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrMessageNotFound)
}
