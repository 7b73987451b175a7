package recommendation

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestInMemoryRepository_CreateGetLikeDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository(nil)

	created, err := repo.Create(ctx, Payload{ProductID: "1", RecommendationProductID: "2", Relationship: UpSell})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Likes == nil || *created.Likes != 0 {
		t.Fatalf("expected zero likes on create, got %v", created.Likes)
	}

	key := created.Key()
	liked, err := repo.Like(ctx, key)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if *liked.Likes != 1 {
		t.Fatalf("expected 1 like, got %d", *liked.Likes)
	}
	// the returned record must not alias the stored counter
	*liked.Likes = 100
	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.Likes != 1 {
		t.Fatalf("stored likes changed through returned record: %d", *got.Likes)
	}

	if err := repo.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, key); err != nil {
		t.Fatalf("second delete should be idempotent, got %v", err)
	}
	_, err = repo.Get(ctx, key)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if apiErr.Message != "Recommendation for product id 1 and 2 was not found." {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestInMemoryRepository_RejectsUnknownRelationship(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	_, err := repo.Create(context.Background(), Payload{ProductID: "1", RecommendationProductID: "2", Relationship: "FRIENDS"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
}

func TestInMemoryRepository_CreateDuplicate(t *testing.T) {
	repo := NewInMemoryRepository([]Record{{ProductID: "1", RecommendationProductID: "2", Relationship: UpSell}})
	_, err := repo.Create(context.Background(), Payload{ProductID: "1", RecommendationProductID: "2", Relationship: CrossSell})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 APIError, got %v", err)
	}
}

func TestInMemoryRepository_UpdateAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository([]Record{
		{ProductID: "1", RecommendationProductID: "2", Relationship: UpSell},
		{ProductID: "1", RecommendationProductID: "3", Relationship: CrossSell},
		{ProductID: "4", RecommendationProductID: "5", Relationship: UpSell},
	})

	if _, err := repo.Update(ctx, Payload{ProductID: "9", RecommendationProductID: "9", Relationship: UpSell}); err == nil {
		t.Fatalf("expected not found on update of missing record")
	}
	updated, err := repo.Update(ctx, Payload{ProductID: "1", RecommendationProductID: "3", Relationship: Accessory})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Relationship != Accessory {
		t.Fatalf("relationship not updated: %s", updated.Relationship)
	}

	all, _ := repo.List(ctx, Query{})
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	forOne, _ := repo.List(ctx, Query{ProductID: "1"})
	if len(forOne) != 2 {
		t.Fatalf("expected 2 records for product 1, got %d", len(forOne))
	}
	upSell, _ := repo.List(ctx, Query{Relationship: UpSell})
	if len(upSell) != 2 {
		t.Fatalf("expected 2 UP_SELL records, got %d", len(upSell))
	}
	none, _ := repo.List(ctx, Query{ProductID: "1", Relationship: GoTogether})
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", none)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(&APIError{StatusCode: 404, Message: "gone"}); got != "gone" {
		t.Fatalf("got %q", got)
	}
	if got := Message(errors.New("dial tcp: refused")); got != "dial tcp: refused" {
		t.Fatalf("got %q", got)
	}
	if got := Message(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}
