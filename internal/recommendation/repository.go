package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidKey     = errors.New("invalid recommendation key")
	ErrInvalidPayload = errors.New("invalid recommendation payload")
	ErrInvalidQuery   = errors.New("invalid recommendation query")
)

// APIError is an error response of the recommendations service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recommendations api responded %d: %s", e.StatusCode, e.Message)
}

// Message returns the text a user should see for err: the service's message
// for API errors, the error text otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// Repository is the set of calls the recommendations service offers.
type Repository interface {
	Create(ctx context.Context, p Payload) (Record, error)
	Update(ctx context.Context, p Payload) (Record, error)
	Get(ctx context.Context, key Key) (Record, error)
	Delete(ctx context.Context, key Key) error
	Like(ctx context.Context, key Key) (Record, error)
	List(ctx context.Context, q Query) ([]Record, error)
}

type storedRecord struct {
	key          Key
	relationship Relationship
	likes        int
	dislikes     int
}

func (s storedRecord) record() Record {
	likes, dislikes := s.likes, s.dislikes
	return Record{
		ProductID:               s.key.ProductID,
		RecommendationProductID: s.key.RecommendationProductID,
		Relationship:            s.relationship,
		Likes:                   &likes,
		Dislikes:                &dislikes,
	}
}

// InMemoryRepository answers the way the recommendations service does. It is
// used by tests and by the offline mode of the console.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records []storedRecord
}

func NewInMemoryRepository(seed []Record) *InMemoryRepository {
	r := &InMemoryRepository{records: make([]storedRecord, 0, len(seed))}
	for _, rec := range seed {
		s := storedRecord{key: rec.Key(), relationship: rec.Relationship}
		if rec.Likes != nil {
			s.likes = *rec.Likes
		}
		if rec.Dislikes != nil {
			s.dislikes = *rec.Dislikes
		}
		r.records = append(r.records, s)
	}
	return r
}

func notFound(key Key) error {
	return &APIError{
		StatusCode: fiber.StatusNotFound,
		Message:    fmt.Sprintf("Recommendation for product id %s and %s was not found.", key.ProductID, key.RecommendationProductID),
	}
}

func badRelationship() error {
	names := make([]string, 0, len(relationships))
	for _, r := range relationships {
		names = append(names, "'"+string(r)+"'")
	}
	return &APIError{
		StatusCode: fiber.StatusBadRequest,
		Message:    fmt.Sprintf("Bad relationship input. Supported relationships are %v", names),
	}
}

func (r *InMemoryRepository) indexOf(key Key) int {
	for i, s := range r.records {
		if s.key == key {
			return i
		}
	}
	return -1
}

func (r *InMemoryRepository) Create(ctx context.Context, p Payload) (Record, error) {
	if !p.Relationship.Known() {
		return Record{}, badRelationship()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.Key()
	if r.indexOf(key) >= 0 {
		return Record{}, &APIError{
			StatusCode: fiber.StatusConflict,
			Message:    fmt.Sprintf("Recommendation for product id %s and %s already exists.", key.ProductID, key.RecommendationProductID),
		}
	}
	s := storedRecord{key: key, relationship: p.Relationship}
	r.records = append(r.records, s)
	return s.record(), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, p Payload) (Record, error) {
	if !p.Relationship.Known() {
		return Record{}, badRelationship()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p.Key())
	if i < 0 {
		return Record{}, notFound(p.Key())
	}
	r.records[i].relationship = p.Relationship
	return r.records[i].record(), nil
}

func (r *InMemoryRepository) Get(ctx context.Context, key Key) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(key)
	if i < 0 {
		return Record{}, notFound(key)
	}
	return r.records[i].record(), nil
}

// Delete is idempotent, like the service's DELETE.
func (r *InMemoryRepository) Delete(ctx context.Context, key Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(key); i >= 0 {
		r.records = append(r.records[:i], r.records[i+1:]...)
	}
	return nil
}

func (r *InMemoryRepository) Like(ctx context.Context, key Key) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(key)
	if i < 0 {
		return Record{}, notFound(key)
	}
	r.records[i].likes++
	return r.records[i].record(), nil
}

func (r *InMemoryRepository) List(ctx context.Context, q Query) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0)
	for _, s := range r.records {
		rec := s.record()
		if q.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}
