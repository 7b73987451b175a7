package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Service stamps and stores history entries.
type Service struct {
	repo         Repository
	defaultLimit int
	now          func() time.Time
	newID        func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:         repo,
		defaultLimit: DefaultLimit,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
}

// WithDefaultLimit sets the limit used when a filter has none.
func (s *Service) WithDefaultLimit(n int) *Service {
	if n > 0 && n <= MaxLimit {
		s.defaultLimit = n
	}
	return s
}

// Record assigns an id and timestamp to e and stores it.
func (s *Service) Record(ctx context.Context, e Entry) (Entry, error) {
	e.ID = s.newID()
	e.CreatedAt = s.now()
	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns recent entries; the limit is clamped to [1, MaxLimit].
func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = s.defaultLimit
	case f.Limit > MaxLimit:
		f.Limit = MaxLimit
	}
	return s.repo.List(ctx, f)
}
