package console

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/wichananm65/recommendation-console/internal/logging"
	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

const (
	FlashSuccess     = "Success"
	FlashDeleted     = "Recommendation has been Deleted!"
	FlashLiked       = "Liked!"
	FlashServerError = "Server error!"
)

// Action names a console button.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionRetrieve Action = "retrieve"
	ActionDelete   Action = "delete"
	ActionLike     Action = "like"
	ActionSearch   Action = "search"
	ActionClear    Action = "clear"
)

var ErrUnknownAction = errors.New("unknown action")

var actions = []Action{ActionCreate, ActionUpdate, ActionRetrieve, ActionDelete, ActionLike, ActionSearch, ActionClear}

// Actions lists every console button in display order.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

func ParseAction(s string) (Action, error) {
	name := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range actions {
		if a == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownAction, s)
}

// Controller binds console actions to calls of the recommendations service.
// Every action except clear issues exactly one request.
type Controller struct {
	repo      recommendation.Repository
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

func NewController(repo recommendation.Repository) *Controller {
	return &Controller{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
		log:       logging.WithComponent("console"),
	}
}

// Dispatch runs action against vm. The returned error describes a failed
// action; vm already carries the flash shown for it.
func (c *Controller) Dispatch(ctx context.Context, action Action, vm *ViewModel) error {
	switch action {
	case ActionCreate:
		return c.Create(ctx, vm)
	case ActionUpdate:
		return c.Update(ctx, vm)
	case ActionRetrieve:
		return c.Retrieve(ctx, vm)
	case ActionDelete:
		return c.Delete(ctx, vm)
	case ActionLike:
		return c.Like(ctx, vm)
	case ActionSearch:
		return c.Search(ctx, vm)
	case ActionClear:
		c.Clear(vm)
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, action)
	}
}

func (c *Controller) Create(ctx context.Context, vm *ViewModel) error {
	payload := vm.Form.Payload()
	if err := payload.Validate(); err != nil {
		return c.reject(vm, err)
	}
	rec, err := c.repo.Create(ctx, payload)
	if err != nil {
		return c.fail(vm, ActionCreate, err)
	}
	vm.Form.Fill(rec)
	vm.Flash = FlashSuccess
	return nil
}

func (c *Controller) Update(ctx context.Context, vm *ViewModel) error {
	payload := vm.Form.Payload()
	if err := payload.Validate(); err != nil {
		return c.reject(vm, err)
	}
	rec, err := c.repo.Update(ctx, payload)
	if err != nil {
		return c.fail(vm, ActionUpdate, err)
	}
	vm.Form.Fill(rec)
	vm.Flash = FlashSuccess
	return nil
}

func (c *Controller) Retrieve(ctx context.Context, vm *ViewModel) error {
	key := vm.Form.Key()
	if err := key.Validate(); err != nil {
		return c.reject(vm, err)
	}
	rec, err := c.repo.Get(ctx, key)
	if err != nil {
		vm.Form.Clear()
		return c.fail(vm, ActionRetrieve, err)
	}
	vm.Form.Fill(rec)
	vm.Flash = FlashSuccess
	return nil
}

// Delete never shows the service's error text, only FlashServerError.
func (c *Controller) Delete(ctx context.Context, vm *ViewModel) error {
	key := vm.Form.Key()
	if err := key.Validate(); err != nil {
		return c.reject(vm, err)
	}
	if err := c.repo.Delete(ctx, key); err != nil {
		c.log.Warn().Err(err).Str("action", string(ActionDelete)).Msg("delete failed")
		vm.Flash = FlashServerError
		return err
	}
	vm.Form.Clear()
	vm.Flash = FlashDeleted
	return nil
}

func (c *Controller) Like(ctx context.Context, vm *ViewModel) error {
	key := vm.Form.Key()
	if err := key.Validate(); err != nil {
		return c.reject(vm, err)
	}
	rec, err := c.repo.Like(ctx, key)
	if err != nil {
		return c.fail(vm, ActionLike, err)
	}
	vm.Form.Fill(rec)
	vm.Flash = FlashLiked
	return nil
}

// Search renders every match and copies the first one into the form. With no
// matches the form is left as it was.
func (c *Controller) Search(ctx context.Context, vm *ViewModel) error {
	q := vm.Form.Query()
	if err := q.Validate(); err != nil {
		return c.reject(vm, err)
	}
	records, err := c.repo.List(ctx, q)
	if err != nil {
		return c.fail(vm, ActionSearch, err)
	}
	vm.Results = NewResultsTable(records)
	if len(records) > 0 {
		vm.Form.Fill(records[0])
	}
	vm.Flash = FlashSuccess
	return nil
}

func (c *Controller) Clear(vm *ViewModel) {
	vm.Form.Clear()
}

// reject handles input that never leaves the console.
func (c *Controller) reject(vm *ViewModel, err error) error {
	var msg string
	switch {
	case errors.Is(err, recommendation.ErrInvalidKey),
		errors.Is(err, recommendation.ErrInvalidPayload),
		errors.Is(err, recommendation.ErrInvalidQuery):
		// drop the sentinel prefix, keep the field messages
		msg = err.Error()
		if i := strings.Index(msg, ": "); i >= 0 {
			msg = msg[i+2:]
		}
	default:
		msg = err.Error()
	}
	vm.Flash = msg
	return &RejectedError{Err: err}
}

func (c *Controller) fail(vm *ViewModel, action Action, err error) error {
	vm.Flash = c.message(err)
	ev := c.log.Warn().Err(err).Str("action", string(action))
	var apiErr *recommendation.APIError
	if errors.As(err, &apiErr) {
		ev = ev.Int("status", apiErr.StatusCode)
	}
	ev.Msg("recommendations api call failed")
	return err
}

// message strips any markup from service-supplied text.
func (c *Controller) message(err error) string {
	return strings.TrimSpace(html.UnescapeString(c.sanitizer.Sanitize(recommendation.Message(err))))
}

// RejectedError marks an action refused before any request was sent.
type RejectedError struct {
	Err error
}

func (e *RejectedError) Error() string {
	return e.Err.Error()
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}
