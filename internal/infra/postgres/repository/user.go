package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-reader-bot/internal/infra/postgres"
)

// ErrUserNotFound is shared with the other user stores.
var ErrUserNotFound = entities.ErrUserNotFound

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database pool.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a new user or refreshes the profile of an existing one.
// The welcome flag and the last read pointer are left untouched.
func (r *UserRepository) Save(ctx context.Context, user *entities.User) (bool, error) {
	query := `
		INSERT INTO users (id, chat_id, first_name, username, language_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			first_name = EXCLUDED.first_name,
			username = EXCLUDED.username,
			language_code = EXCLUDED.language_code
		RETURNING (xmax = 0) AS created
	`

	var created bool
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.ChatID,
		user.FirstName,
		user.Username,
		user.LanguageCode,
		user.CreatedAt,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	return created, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	query := `
		SELECT id, chat_id, first_name, username, language_code, welcomed,
		       last_read_surah_number, last_read_verse_number, last_read_surah_name,
		       last_read_updated_at, created_at
		FROM users
		WHERE id = $1
	`

	var (
		user        entities.User
		surahNumber pgtype.Int4
		verseNumber pgtype.Int4
		surahName   pgtype.Text
		updatedAt   pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.ChatID,
		&user.FirstName,
		&user.Username,
		&user.LanguageCode,
		&user.Welcomed,
		&surahNumber,
		&verseNumber,
		&surahName,
		&updatedAt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if surahNumber.Valid && verseNumber.Valid {
		user.LastRead = &entities.LastRead{
			SurahNumber:       int(surahNumber.Int32),
			VerseNumber:       int(verseNumber.Int32),
			SurahNamePhonetic: surahName.String,
			UpdatedAt:         updatedAt.Time,
		}
	}

	return &user, nil
}

// UpdateLastRead overwrites the user's last read pointer. Last write wins.
func (r *UserRepository) UpdateLastRead(ctx context.Context, userID int64, lastRead entities.LastRead) error {
	query := `
		UPDATE users
		SET last_read_surah_number = $1,
		    last_read_verse_number = $2,
		    last_read_surah_name = $3,
		    last_read_updated_at = $4
		WHERE id = $5
	`

	updatedAt := lastRead.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	result, err := r.db.Exec(ctx, query,
		lastRead.SurahNumber,
		lastRead.VerseNumber,
		lastRead.SurahNamePhonetic,
		updatedAt,
		userID,
	)
	if err != nil {
		return fmt.Errorf("update last read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ClearLastRead removes the user's last read pointer.
func (r *UserRepository) ClearLastRead(ctx context.Context, userID int64) error {
	query := `
		UPDATE users
		SET last_read_surah_number = NULL,
		    last_read_verse_number = NULL,
		    last_read_surah_name = NULL,
		    last_read_updated_at = NULL
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("clear last read: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// MarkWelcomed records that the welcome message was shown.
func (r *UserRepository) MarkWelcomed(ctx context.Context, userID int64) error {
	result, err := r.db.Exec(ctx, `UPDATE users SET welcomed = TRUE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("mark welcomed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
