package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"askbot/internal/domain"
)

// UserRepo implements repository.UserRepository
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetLanguage returns the language a user picked
func (r *UserRepo) GetLanguage(ctx context.Context, telegramID int64) (domain.Language, bool, error) {
	var lang sql.NullString
	query := `SELECT language FROM users WHERE telegram_id = $1`
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&lang)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return domain.Language(lang.String), true, nil
}

// UpsertLanguage creates the user or updates language and username of an existing one
func (r *UserRepo) UpsertLanguage(ctx context.Context, telegramID int64, username string, lang domain.Language) error {
	query := `
		INSERT INTO users (telegram_id, username, language)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id)
		DO UPDATE SET language = EXCLUDED.language, username = EXCLUDED.username, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, telegramID, nullIfEmpty(username), string(lang))
	return err
}

// SetPhone stores the phone number of a registered user
func (r *UserRepo) SetPhone(ctx context.Context, telegramID int64, phone string) error {
	query := `UPDATE users SET phone = $1, updated_at = NOW() WHERE telegram_id = $2`
	res, err := r.db.ExecContext(ctx, query, phone, telegramID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// ListIDs returns ids of all registered users
func (r *UserRepo) ListIDs(ctx context.Context) ([]int64, error) {
	query := `SELECT telegram_id FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Count returns the number of registered users
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
