package console

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/wichananm65/recommendation-console/internal/history"
	"github.com/wichananm65/recommendation-console/internal/logging"
	"github.com/wichananm65/recommendation-console/internal/metrics"
)

const FlashSignInRequired = "Sign in required"

type Handler struct {
	controller *Controller
	history    *history.Service
	auth       *Authenticator
	log        zerolog.Logger
}

// NewHandler wires the console routes. auth may be nil.
func NewHandler(controller *Controller, hist *history.Service, auth *Authenticator) *Handler {
	return &Handler{
		controller: controller,
		history:    hist,
		auth:       auth,
		log:        logging.WithComponent("console-http"),
	}
}

// RegisterPublicRoutes must run before RegisterProtectedRoutes so the session
// endpoints are not captured by the :action routes.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/", h.index)
	app.Post("/console/session", h.signIn)
	app.Post("/api/console/session", h.signIn)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	formGuard := h.auth.Middleware("cookie:"+TokenCookie, h.formUnauthorized)
	apiGuard := h.auth.Middleware("header:Authorization", h.apiUnauthorized)

	app.Post("/console/:action", formGuard, h.submitForm)
	app.Get("/api/console/history", apiGuard, h.listHistory)
	app.Post("/api/console/:action", apiGuard, h.submitJSON)
}

type signInRequest struct {
	OperatorKey string `json:"operator_key" form:"operator_key"`
}

type actionResponse struct {
	Action string `json:"action"`
	OK     bool   `json:"ok"`
	ViewModel
}

func (h *Handler) index(c *fiber.Ctx) error {
	return h.renderPage(c, fiber.StatusOK, ViewModel{})
}

func (h *Handler) renderPage(c *fiber.Ctx, status int, vm ViewModel) error {
	body, err := renderPage(vm, h.auth != nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(body)
}

func (h *Handler) submitForm(c *fiber.Ctx) error {
	action, err := ParseAction(c.Params("action"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	}
	vm := ViewModel{}
	if err := c.BodyParser(&vm.Form); err != nil {
		vm.Flash = err.Error()
		return h.renderPage(c, fiber.StatusBadRequest, vm)
	}
	h.dispatch(c, action, &vm)
	return h.renderPage(c, fiber.StatusOK, vm)
}

func (h *Handler) submitJSON(c *fiber.Ctx) error {
	action, err := ParseAction(c.Params("action"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	}
	vm := ViewModel{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&vm.Form); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
	}
	ok := h.dispatch(c, action, &vm)
	return c.JSON(actionResponse{Action: string(action), OK: ok, ViewModel: vm})
}

// dispatch runs the action and records it; it reports whether the action succeeded.
func (h *Handler) dispatch(c *fiber.Ctx, action Action, vm *ViewModel) bool {
	ctx := c.UserContext()
	// actions may clear the form; history keeps what was submitted
	submitted := vm.Form
	err := h.controller.Dispatch(ctx, action, vm)

	outcome := "ok"
	var rejected *RejectedError
	switch {
	case errors.As(err, &rejected):
		outcome = "rejected"
	case err != nil:
		outcome = "failed"
	}
	metrics.RecordAction(string(action), outcome)

	if h.history != nil {
		entry := history.Entry{
			Action:                  string(action),
			ProductID:               strings.TrimSpace(submitted.ProductID),
			RecommendationProductID: strings.TrimSpace(submitted.RecommendationProductID),
			Relationship:            strings.TrimSpace(submitted.Relationship),
			Success:                 err == nil,
			Flash:                   vm.Flash,
		}
		if err != nil {
			entry.Error = err.Error()
		}
		if _, herr := h.history.Record(ctx, entry); herr != nil {
			metrics.HistoryWriteErrors.Inc()
			h.log.Error().Err(herr).Str("action", string(action)).Msg("could not record history")
		}
	}
	return err == nil
}

func (h *Handler) listHistory(c *fiber.Ctx) error {
	if h.history == nil {
		return c.JSON([]history.Entry{})
	}
	f := history.Filter{}
	if l := c.Query("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid limit"})
		}
		f.Limit = v
	}
	c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		if string(key) == "action" {
			for _, a := range strings.Split(string(value), ",") {
				if a = strings.TrimSpace(a); a != "" {
					f.Actions = append(f.Actions, a)
				}
			}
		}
	})

	entries, err := h.history.List(c.UserContext(), f)
	if err != nil {
		h.log.Error().Err(err).Msg("list history")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(entries)
}

func (h *Handler) signIn(c *fiber.Ctx) error {
	wantsJSON := strings.HasPrefix(c.Path(), "/api/")
	if h.auth == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "sign-in is not enabled"})
	}

	payload := new(signInRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	token, expires, err := h.auth.SignIn(payload.OperatorKey)
	if err != nil {
		if wantsJSON {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid operator key"})
		}
		return h.renderPage(c, fiber.StatusUnauthorized, ViewModel{Flash: "Invalid operator key"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	if wantsJSON {
		return c.JSON(fiber.Map{"message": "Login successful", "token": token})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *Handler) formUnauthorized(c *fiber.Ctx, err error) error {
	return h.renderPage(c, fiber.StatusUnauthorized, ViewModel{Flash: FlashSignInRequired})
}

func (h *Handler) apiUnauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
}
