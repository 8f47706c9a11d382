package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/phonedex/phonedex/internal/config"
	"github.com/phonedex/phonedex/internal/contacts"
)

// ContactsHandler serves the contact CRUD and stats endpoints.
type ContactsHandler struct {
	store  contacts.Store
	logger *slog.Logger
}

// NewContactsHandler creates a contacts API handler.
func NewContactsHandler(log *slog.Logger, store contacts.Store) *ContactsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContactsHandler{
		store:  store,
		logger: log.With(slog.String("handler", "contacts")),
	}
}

// Register mounts the contact routes on the Echo instance.
func (h *ContactsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/contacts")
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	e.GET("/api/stats", h.Stats)
}

// List answers GET /api/contacts?search=&limit= with contacts ordered by
// most recently updated.
func (h *ContactsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	search := strings.TrimSpace(c.QueryParam("search"))

	var items []contacts.Contact
	var err error
	if search != "" {
		items, err = h.store.Search(ctx, search)
	} else {
		items, err = h.store.List(ctx, parseLimit(c.QueryParam("limit")))
	}
	if err != nil {
		return h.storeError(c, "list contacts", err)
	}
	return c.JSON(http.StatusOK, okList(items, len(items)))
}

// Get answers GET /api/contacts/:id.
func (h *ContactsHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, fail("invalid contact id"))
	}
	item, err := h.store.GetByID(c.Request().Context(), id)
	if errors.Is(err, contacts.ErrNotFound) {
		return c.JSON(http.StatusNotFound, fail("contact not found"))
	}
	if err != nil {
		return h.storeError(c, "get contact", err)
	}
	return c.JSON(http.StatusOK, okData(item))
}

// Update answers PUT /api/contacts/:id. Only name, company, and context can
// change; absent fields keep their stored values.
func (h *ContactsHandler) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, fail("invalid contact id"))
	}
	var req contacts.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fail("invalid request body"))
	}
	err = h.store.Update(c.Request().Context(), id, req)
	if errors.Is(err, contacts.ErrNotFound) {
		return c.JSON(http.StatusNotFound, fail("contact not found"))
	}
	if err != nil {
		return h.storeError(c, "update contact", err)
	}
	return c.JSON(http.StatusOK, okMessage("contact updated"))
}

// Stats answers GET /api/stats.
func (h *ContactsHandler) Stats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		return h.storeError(c, "contact stats", err)
	}
	return c.JSON(http.StatusOK, okData(stats))
}

// storeError logs the failure with detail and returns a generic 500 body.
func (h *ContactsHandler) storeError(c echo.Context, op string, err error) error {
	h.logger.Error(op+" failed",
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", err),
	)
	return c.JSON(http.StatusInternalServerError, fail("internal error"))
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

func parseLimit(raw string) int32 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return config.DefaultListLimit
	}
	value, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil || value <= 0 {
		return config.DefaultListLimit
	}
	return int32(value)
}
