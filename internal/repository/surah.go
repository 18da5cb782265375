package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

var (
	ErrSurahNotFound      = errors.New("surah not found")
	ErrInvalidSurahNumber = errors.New("invalid surah number")
)

// SurahRepository provides read-only access to the 114 surahs metadata.
// This implementation keeps the dataset bundled as JSON in memory.
type SurahRepository struct {
	surahs []*entities.Surah
}

// NewSurahRepository creates a new SurahRepository from the JSON file at path.
func NewSurahRepository(path string) (*SurahRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read surahs file: %w", err)
	}

	surahs, err := parseSurahs(data)
	if err != nil {
		return nil, err
	}

	return &SurahRepository{surahs: surahs}, nil
}

// NewSurahRepositoryFromSlice builds a repository from already decoded surahs.
func NewSurahRepositoryFromSlice(surahs []*entities.Surah) *SurahRepository {
	return &SurahRepository{surahs: uniqueSurahs(surahs)}
}

// GetByNumber retrieves a surah by its number (1-114).
func (r *SurahRepository) GetByNumber(_ context.Context, number int) (*entities.Surah, error) {
	if !entities.ValidSurahNumber(number) {
		return nil, ErrInvalidSurahNumber
	}

	for _, s := range r.surahs {
		if s.Number == number {
			return s, nil
		}
	}

	return nil, ErrSurahNotFound
}

// GetAll retrieves all surahs ordered by number.
func (r *SurahRepository) GetAll(_ context.Context) ([]*entities.Surah, error) {
	return r.surahs, nil
}

func parseSurahs(data []byte) ([]*entities.Surah, error) {
	var wrapper struct {
		Surahs []*entities.Surah `json:"surahs"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal surahs JSON: %w", err)
	}

	for _, s := range wrapper.Surahs {
		if !entities.ValidSurahNumber(s.Number) {
			return nil, fmt.Errorf("surah %d: %w", s.Number, ErrInvalidSurahNumber)
		}
	}

	surahs := uniqueSurahs(wrapper.Surahs)
	if len(surahs) != entities.LastSurah {
		return nil, fmt.Errorf("expected %d surahs, got %d", entities.LastSurah, len(surahs))
	}

	return surahs, nil
}

// uniqueSurahs keeps the first record of every number and sorts by number.
func uniqueSurahs(in []*entities.Surah) []*entities.Surah {
	seen := make(map[int]struct{}, len(in))
	out := make([]*entities.Surah, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		if _, ok := seen[s.Number]; ok {
			continue
		}
		seen[s.Number] = struct{}{}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
