package console

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

// countingRepository counts calls and can force every call to fail.
type countingRepository struct {
	inner recommendation.Repository
	calls int
	err   error
}

func (r *countingRepository) Create(ctx context.Context, p recommendation.Payload) (recommendation.Record, error) {
	r.calls++
	if r.err != nil {
		return recommendation.Record{}, r.err
	}
	return r.inner.Create(ctx, p)
}

func (r *countingRepository) Update(ctx context.Context, p recommendation.Payload) (recommendation.Record, error) {
	r.calls++
	if r.err != nil {
		return recommendation.Record{}, r.err
	}
	return r.inner.Update(ctx, p)
}

func (r *countingRepository) Get(ctx context.Context, key recommendation.Key) (recommendation.Record, error) {
	r.calls++
	if r.err != nil {
		return recommendation.Record{}, r.err
	}
	return r.inner.Get(ctx, key)
}

func (r *countingRepository) Delete(ctx context.Context, key recommendation.Key) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return r.inner.Delete(ctx, key)
}

func (r *countingRepository) Like(ctx context.Context, key recommendation.Key) (recommendation.Record, error) {
	r.calls++
	if r.err != nil {
		return recommendation.Record{}, r.err
	}
	return r.inner.Like(ctx, key)
}

func (r *countingRepository) List(ctx context.Context, q recommendation.Query) ([]recommendation.Record, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.inner.List(ctx, q)
}

func intPtr(v int) *int { return &v }

func newTestController(seed []recommendation.Record) (*Controller, *countingRepository) {
	repo := &countingRepository{inner: recommendation.NewInMemoryRepository(seed)}
	return NewController(repo), repo
}

func TestCreatePopulatesFormFromResponse(t *testing.T) {
	c, repo := newTestController(nil)
	vm := &ViewModel{Form: FormState{ProductID: " 1 ", RecommendationProductID: "2", Relationship: "UP_SELL", Likes: "99"}}

	if err := c.Create(context.Background(), vm); err != nil {
		t.Fatalf("create: %v", err)
	}
	want := FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "UP_SELL", Likes: "0", Dislikes: "0"}
	if diff := cmp.Diff(want, vm.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if vm.Flash != FlashSuccess {
		t.Fatalf("expected %q, got %q", FlashSuccess, vm.Flash)
	}
	if repo.calls != 1 {
		t.Fatalf("expected exactly one request, got %d", repo.calls)
	}
}

func TestCreateFailureShowsServerMessage(t *testing.T) {
	c, _ := newTestController(nil)
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "FRIENDS"}}

	err := c.Create(context.Background(), vm)
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "Bad relationship input. Supported relationships are ['GO_TOGETHER' 'CROSS_SELL' 'UP_SELL' 'ACCESSORY']"
	if vm.Flash != want {
		t.Fatalf("unexpected flash %q", vm.Flash)
	}
	if vm.Form.Relationship != "FRIENDS" {
		t.Fatalf("form must be kept on create failure, got %+v", vm.Form)
	}
}

func TestUpdate(t *testing.T) {
	c, repo := newTestController([]recommendation.Record{{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.UpSell, Likes: intPtr(5)}})
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "ACCESSORY"}}

	if err := c.Update(context.Background(), vm); err != nil {
		t.Fatalf("update: %v", err)
	}
	if vm.Form.Relationship != "ACCESSORY" || vm.Form.Likes != "5" || vm.Flash != FlashSuccess {
		t.Fatalf("unexpected view model %+v", vm)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one request, got %d", repo.calls)
	}

	vm = &ViewModel{Form: FormState{ProductID: "8", RecommendationProductID: "9", Relationship: "ACCESSORY"}}
	if err := c.Update(context.Background(), vm); err == nil {
		t.Fatalf("expected not found")
	}
	if vm.Flash != "Recommendation for product id 8 and 9 was not found." {
		t.Fatalf("unexpected flash %q", vm.Flash)
	}
}

func TestRetrieve(t *testing.T) {
	c, _ := newTestController([]recommendation.Record{{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.CrossSell, Likes: intPtr(3)}})
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2"}}

	if err := c.Retrieve(context.Background(), vm); err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	want := FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "CROSS_SELL", Likes: "3", Dislikes: "0"}
	if diff := cmp.Diff(want, vm.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrieveMissingClearsFormAndShowsServerText(t *testing.T) {
	c, _ := newTestController(nil)
	vm := &ViewModel{Form: FormState{ProductID: "5", RecommendationProductID: "6", Relationship: "UP_SELL", Likes: "1"}}

	if err := c.Retrieve(context.Background(), vm); err == nil {
		t.Fatalf("expected error")
	}
	if vm.Form != (FormState{}) {
		t.Fatalf("form not cleared: %+v", vm.Form)
	}
	if vm.Flash != "Recommendation for product id 5 and 6 was not found." {
		t.Fatalf("unexpected flash %q", vm.Flash)
	}
}

func TestDeleteClearsFormRegardlessOfPriorState(t *testing.T) {
	for _, seed := range [][]recommendation.Record{
		nil,
		{{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.UpSell}},
	} {
		c, _ := newTestController(seed)
		vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "UP_SELL", Likes: "4"}}
		if err := c.Delete(context.Background(), vm); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if vm.Form != (FormState{}) || vm.Flash != FlashDeleted {
			t.Fatalf("unexpected view model after delete: %+v", vm)
		}
	}
}

func TestDeleteFailureShowsGenericMessage(t *testing.T) {
	c, repo := newTestController(nil)
	repo.err = &recommendation.APIError{StatusCode: fiber.StatusInternalServerError, Message: "database is down"}
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2"}}

	if err := c.Delete(context.Background(), vm); err == nil {
		t.Fatalf("expected error")
	}
	if vm.Flash != FlashServerError {
		t.Fatalf("expected %q, got %q", FlashServerError, vm.Flash)
	}
	if vm.Form.ProductID != "1" {
		t.Fatalf("form must be kept on delete failure")
	}
}

func TestLikeShowsServerReportedCount(t *testing.T) {
	c, _ := newTestController([]recommendation.Record{{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.UpSell, Likes: intPtr(41)}})
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2", Likes: "7"}}

	if err := c.Like(context.Background(), vm); err != nil {
		t.Fatalf("like: %v", err)
	}
	if vm.Form.Likes != "42" || vm.Form.Relationship != "UP_SELL" || vm.Flash != FlashLiked {
		t.Fatalf("unexpected view model %+v", vm)
	}
}

func TestSearchWithoutResultsKeepsForm(t *testing.T) {
	c, _ := newTestController([]recommendation.Record{{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.UpSell}})
	form := FormState{ProductID: "9", Relationship: "UP_SELL", RecommendationProductID: "x"}
	vm := &ViewModel{Form: form}

	if err := c.Search(context.Background(), vm); err != nil {
		t.Fatalf("search: %v", err)
	}
	if vm.Form != form {
		t.Fatalf("form changed: %+v", vm.Form)
	}
	if len(vm.Results.Rows) != 1 || vm.Results.Matches() != 0 {
		t.Fatalf("expected header-only table, got %+v", vm.Results.Rows)
	}
	if vm.Flash != FlashSuccess {
		t.Fatalf("unexpected flash %q", vm.Flash)
	}
}

func TestSearchCopiesFirstMatch(t *testing.T) {
	seed := []recommendation.Record{
		{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.UpSell, Likes: intPtr(1), Dislikes: intPtr(2)},
		{ProductID: "1", RecommendationProductID: "3", Relationship: recommendation.UpSell},
		{ProductID: "1", RecommendationProductID: "4", Relationship: recommendation.CrossSell},
		{ProductID: "5", RecommendationProductID: "6", Relationship: recommendation.UpSell},
	}
	c, repo := newTestController(seed)
	vm := &ViewModel{Form: FormState{ProductID: "1", Relationship: "UP_SELL"}}

	if err := c.Search(context.Background(), vm); err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.calls != 1 {
		t.Fatalf("expected one request, got %d", repo.calls)
	}
	wantRows := [][]string{
		{"Product ID", "Recommended Product ID", "Relationship", "Likes", "Dislikes"},
		{"1", "2", "UP_SELL", "1", "2"},
		{"1", "3", "UP_SELL", "0", "0"},
	}
	if diff := cmp.Diff(wantRows, vm.Results.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	want := FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "UP_SELL", Likes: "1", Dislikes: "2"}
	if diff := cmp.Diff(want, vm.Form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchWithoutFiltersListsEverything(t *testing.T) {
	c, _ := newTestController([]recommendation.Record{
		{ProductID: "1", RecommendationProductID: "2", Relationship: recommendation.UpSell},
		{ProductID: "3", RecommendationProductID: "4", Relationship: recommendation.Accessory},
	})
	vm := &ViewModel{}
	if err := c.Search(context.Background(), vm); err != nil {
		t.Fatalf("search: %v", err)
	}
	if vm.Results.Matches() != 2 {
		t.Fatalf("expected 2 matches, got %d", vm.Results.Matches())
	}
}

func TestSearchFailureKeepsPreviousResults(t *testing.T) {
	c, repo := newTestController(nil)
	previous := NewResultsTable(nil)
	vm := &ViewModel{Results: previous}
	repo.err = &recommendation.APIError{StatusCode: fiber.StatusBadRequest, Message: "<b>bad</b> filter"}

	if err := c.Search(context.Background(), vm); err == nil {
		t.Fatalf("expected error")
	}
	if vm.Results != previous {
		t.Fatalf("results replaced on failure")
	}
	if vm.Flash != "bad filter" {
		t.Fatalf("markup not stripped from flash: %q", vm.Flash)
	}
}

func TestInvalidKeySendsNoRequest(t *testing.T) {
	c, repo := newTestController(nil)
	for _, action := range []Action{ActionCreate, ActionUpdate, ActionRetrieve, ActionDelete, ActionLike} {
		vm := &ViewModel{Form: FormState{ProductID: "", RecommendationProductID: "abc", Relationship: "UP_SELL"}}
		err := c.Dispatch(context.Background(), action, vm)
		var rejected *RejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("%s: expected RejectedError, got %v", action, err)
		}
		if vm.Flash != "product_id is required; recommendation_product_id must be numeric" {
			t.Fatalf("%s: unexpected flash %q", action, vm.Flash)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("expected no requests, got %d", repo.calls)
	}
}

func TestTransportErrorSurfacesErrorText(t *testing.T) {
	c, repo := newTestController(nil)
	repo.err = errors.New("dial tcp 127.0.0.1:8080: connection refused")
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2"}}

	_ = c.Like(context.Background(), vm)
	if vm.Flash != "dial tcp 127.0.0.1:8080: connection refused" {
		t.Fatalf("unexpected flash %q", vm.Flash)
	}
}

func TestClearSendsNoRequest(t *testing.T) {
	c, repo := newTestController(nil)
	vm := &ViewModel{Form: FormState{ProductID: "1", RecommendationProductID: "2", Relationship: "UP_SELL", Likes: "3"}, Flash: "Success"}

	if err := c.Dispatch(context.Background(), ActionClear, vm); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if vm.Form != (FormState{}) || repo.calls != 0 {
		t.Fatalf("unexpected state after clear: %+v, calls=%d", vm, repo.calls)
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Like ")
	if err != nil || a != ActionLike {
		t.Fatalf("ParseAction: %v %v", a, err)
	}
	if _, err := ParseAction("explode"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestFractionalKeySendsNoRequest(t *testing.T) {
	c, repo := newTestController(nil)
	vm := &ViewModel{Form: FormState{ProductID: "1.5", RecommendationProductID: "-2"}}

	err := c.Retrieve(context.Background(), vm)
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RejectedError, got %v", err)
	}
	if vm.Flash != "product_id must be numeric; recommendation_product_id must be numeric" {
		t.Fatalf("unexpected flash %q", vm.Flash)
	}
	if repo.calls != 0 {
		t.Fatalf("expected no requests, got %d", repo.calls)
	}
}
