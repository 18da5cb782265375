// Package sqlite stores the terminal reader's local profiles using modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

// UserStore keeps local reader profiles and their last read pointer.
type UserStore struct {
	db *sql.DB
}

// Open creates the database at path and its schema if needed.
// Parent directories are created as well.
func Open(path string) (*UserStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &UserStore{db: db}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *UserStore) Close() error {
	return s.db.Close()
}

func (s *UserStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id INTEGER NOT NULL DEFAULT 0,
			first_name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL UNIQUE,
			language_code TEXT NOT NULL DEFAULT '',
			welcomed INTEGER NOT NULL DEFAULT 0,
			last_read_surah_number INTEGER,
			last_read_verse_number INTEGER,
			last_read_surah_name TEXT,
			last_read_updated_at DATETIME,
			created_at DATETIME NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// FindOrCreateByUsername returns the profile with the given name, creating it
// on first use.
func (s *UserStore) FindOrCreateByUsername(ctx context.Context, username string) (*entities.User, error) {
	if username == "" {
		return nil, errors.New("empty username")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, created_at) VALUES (?, ?) ON CONFLICT (username) DO NOTHING`,
		username, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	return s.GetByID(ctx, id)
}

// Save inserts a user with an explicit ID or refreshes its profile fields.
func (s *UserStore) Save(ctx context.Context, user *entities.User) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, user.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, chat_id, first_name, username, language_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = excluded.chat_id,
			first_name = excluded.first_name,
			username = excluded.username,
			language_code = excluded.language_code
	`, user.ID, user.ChatID, user.FirstName, user.Username, user.LanguageCode, user.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("save user: %w", err)
	}

	return !exists, nil
}

// GetByID retrieves a profile by ID.
func (s *UserStore) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	var (
		user        entities.User
		surahNumber sql.NullInt64
		verseNumber sql.NullInt64
		surahName   sql.NullString
		updatedAt   sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, chat_id, first_name, username, language_code, welcomed,
		       last_read_surah_number, last_read_verse_number, last_read_surah_name,
		       last_read_updated_at, created_at
		FROM users WHERE id = ?
	`, userID).Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if surahNumber.Valid && verseNumber.Valid {
		user.LastRead = &entities.LastRead{
			SurahNumber:       int(surahNumber.Int64),
			VerseNumber:       int(verseNumber.Int64),
			SurahNamePhonetic: surahName.String,
			UpdatedAt:         updatedAt.Time,
		}
	}

	return &user, nil
}

// UpdateLastRead overwrites the profile's last read pointer.
func (s *UserStore) UpdateLastRead(ctx context.Context, userID int64, lastRead entities.LastRead) error {
	updatedAt := lastRead.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET last_read_surah_number = ?, last_read_verse_number = ?,
		    last_read_surah_name = ?, last_read_updated_at = ?
		WHERE id = ?
	`, lastRead.SurahNumber, lastRead.VerseNumber, lastRead.SurahNamePhonetic, updatedAt.UTC(), userID)
	if err != nil {
		return fmt.Errorf("update last read: %w", err)
	}

	return affectedOne(res)
}

// ClearLastRead removes the profile's last read pointer.
func (s *UserStore) ClearLastRead(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET last_read_surah_number = NULL, last_read_verse_number = NULL,
		    last_read_surah_name = NULL, last_read_updated_at = NULL
		WHERE id = ?
	`, userID)
	if err != nil {
		return fmt.Errorf("clear last read: %w", err)
	}

	return affectedOne(res)
}

// MarkWelcomed records that the welcome screen was shown.
func (s *UserStore) MarkWelcomed(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET welcomed = 1 WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("mark welcomed: %w", err)
	}

	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}
