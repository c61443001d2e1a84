package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// NotificationHandler handles HTTP requests for the caller's inbox.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type markAllReadResponse struct {
	Marked int `json:"marked"`
}

// List handles GET /v1/notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        kind      query  string  false  "Filter by kind"
// @Param        priority  query  string  false  "Filter by priority"
// @Param        unread    query  bool    false  "Only unread (true) or only read (false)"
// @Success      200  {array}  domain.Notification
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	f := ports.NotificationFilter{
		Kind:     domain.NotificationKind(c.QueryParam("kind")),
		Priority: domain.NotificationPriority(c.QueryParam("priority")),
	}
	switch c.QueryParam("unread") {
	case "true":
		v := true
		f.Unread = &v
	case "false":
		v := false
		f.Unread = &v
	}

	notifications, err := h.service.List(c.Request().Context(), session, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notifications)
}

// MarkRead handles POST /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkRead(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

// MarkUnread handles POST /v1/notifications/:id/unread.
func (h *NotificationHandler) MarkUnread(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkUnread(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, n)
}

// MarkAllRead handles POST /v1/notifications/read-all.
//
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  markAllReadResponse
// @Router       /v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	marked, err := h.service.MarkAllRead(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markAllReadResponse{Marked: marked})
}

// Delete handles DELETE /v1/notifications/:id.
func (h *NotificationHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), session, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
