package service

import (
	"context"
	"strings"

	"github.com/aliskhannn/quran-reader-bot/internal/domain/entities"
)

type SurahService struct {
	repository SurahRepository
}

func NewSurahService(repository SurahRepository) *SurahService {
	return &SurahService{repository: repository}
}

func (s *SurahService) GetByNumber(ctx context.Context, number int) (*entities.Surah, error) {
	return s.repository.GetByNumber(ctx, number)
}

func (s *SurahService) GetAll(ctx context.Context) ([]*entities.Surah, error) {
	return s.repository.GetAll(ctx)
}

// Search filters surahs by a case-insensitive substring of the phonetic or
// French name, or an exact substring of the Arabic name. An empty term
// matches everything.
func (s *SurahService) Search(ctx context.Context, term string) ([]*entities.Surah, error) {
	all, err := s.repository.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return all, nil
	}

	lower := strings.ToLower(term)
	var out []*entities.Surah
	for _, surah := range all {
		if strings.Contains(strings.ToLower(surah.NamePhonetic), lower) ||
			strings.Contains(strings.ToLower(surah.NameFrench), lower) ||
			strings.Contains(surah.NameArabic, term) {
			out = append(out, surah)
		}
	}

	return out, nil
}
