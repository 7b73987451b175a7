package recommendation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
	"github.com/wichananm65/recommendation-console/internal/logging"
	"github.com/wichananm65/recommendation-console/internal/metrics"
)

// HeaderAPIKey carries the API key on mutating calls.
const HeaderAPIKey = "X-Api-Key"

const defaultTimeout = 10 * time.Second

// HTTPConfig configures HTTPRepository.
type HTTPConfig struct {
	// BaseURL may carry a path prefix, e.g. http://localhost:8080/api.
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPRepository talks to the recommendations service over HTTP.
type HTTPRepository struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	log     zerolog.Logger
}

func NewHTTPRepository(cfg HTTPConfig) *HTTPRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPRepository{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		log:     logging.WithComponent("recommendations-api"),
	}
}

type call struct {
	operation string
	method    string
	path      string
	body      any
	out       any
}

type reply struct {
	status   int
	location string
}

func (r *HTTPRepository) requestTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	return timeout, nil
}

func (r *HTTPRepository) do(ctx context.Context, c call) (reply, error) {
	timeout, err := r.requestTimeout(ctx)
	if err != nil {
		return reply{}, err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(c.method)
	req.SetRequestURI(r.baseURL + c.path)
	a.JSONEncoder(json.Marshal)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.method != fiber.MethodGet && r.apiKey != "" {
		a.Set(HeaderAPIKey, r.apiKey)
	}
	if c.body != nil {
		a.JSON(c.body)
	}
	a.Timeout(timeout)

	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	a.SetResponse(resp)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return reply{}, fmt.Errorf("%s %s: %w", c.method, c.path, err)
	}

	start := time.Now()
	status, body, errs := a.Bytes()
	metrics.ObserveUpstream(c.operation, status, time.Since(start))
	r.log.Debug().Str("method", c.method).Str("path", c.path).Int("status", status).Dur("elapsed", time.Since(start)).Msg("upstream call")

	if len(errs) > 0 {
		return reply{}, fmt.Errorf("%s %s: %w", c.method, c.path, errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		return reply{status: status}, decodeAPIError(status, body)
	}

	out := reply{status: status, location: string(resp.Header.Peek(fiber.HeaderLocation))}
	if c.out == nil || len(body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, c.out); err != nil {
		return out, fmt.Errorf("decode %s %s response: %w", c.method, c.path, err)
	}
	return out, nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Message string `json:"message"`
	}
	msg := ""
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil {
		msg = strings.TrimSpace(envelope.Message)
	}
	if msg == "" {
		msg = utils.StatusMessage(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (r *HTTPRepository) Create(ctx context.Context, p Payload) (Record, error) {
	var rec Record
	rep, err := r.do(ctx, call{operation: "create", method: fiber.MethodPost, path: "/recommendations", body: p, out: &rec})
	if err != nil {
		return Record{}, err
	}
	if rep.location != "" {
		r.log.Debug().Str("location", rep.location).Msg("recommendation created")
	}
	return rec, nil
}

func (r *HTTPRepository) Update(ctx context.Context, p Payload) (Record, error) {
	var rec Record
	if _, err := r.do(ctx, call{operation: "update", method: fiber.MethodPut, path: p.Key().Path(), body: p, out: &rec}); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *HTTPRepository) Get(ctx context.Context, key Key) (Record, error) {
	var rec Record
	if _, err := r.do(ctx, call{operation: "get", method: fiber.MethodGet, path: key.Path(), out: &rec}); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *HTTPRepository) Delete(ctx context.Context, key Key) error {
	_, err := r.do(ctx, call{operation: "delete", method: fiber.MethodDelete, path: key.Path()})
	return err
}

func (r *HTTPRepository) Like(ctx context.Context, key Key) (Record, error) {
	var rec Record
	if _, err := r.do(ctx, call{operation: "like", method: fiber.MethodPut, path: key.Path() + "/like", out: &rec}); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *HTTPRepository) List(ctx context.Context, q Query) ([]Record, error) {
	records := make([]Record, 0)
	if _, err := r.do(ctx, call{operation: "list", method: fiber.MethodGet, path: q.Path(), out: &records}); err != nil {
		return nil, err
	}
	return records, nil
}
