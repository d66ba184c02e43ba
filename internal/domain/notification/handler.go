package notification

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/carelink/internal/domain/directory"
	"github.com/carelink/carelink/internal/platform/apperr"
	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/notifications", h.Send, auth.RequireRole(directory.RoleAdmin, directory.RoleDoctor))
	api.GET("/notifications", h.Inbox)
	api.POST("/notifications/:id/read", h.MarkAsRead)
}

func httpError(err error) error {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}

type sendRequest struct {
	Type          string      `json:"type"`
	Title         string      `json:"title"`
	Message       string      `json:"message"`
	RecipientIDs  []uuid.UUID `json:"recipient_ids"`
	ExamID        *uuid.UUID  `json:"exam_id,omitempty"`
	AssociationID *uuid.UUID  `json:"association_id,omitempty"`
}

func (h *Handler) Send(c echo.Context) error {
	callerID, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown caller")
	}
	var body sendRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Type == "" {
		body.Type = TypeGeneral
	}
	view, err := h.svc.CreateAndSend(c.Request().Context(), callerID, body.Type, body.Title, body.Message,
		body.RecipientIDs, body.ExamID, body.AssociationID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *Handler) Inbox(c echo.Context) error {
	callerID, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown caller")
	}
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unread"))
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByRecipient(c.Request().Context(), callerID, unreadOnly, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) MarkAsRead(c echo.Context) error {
	callerID, err := auth.CallerID(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown caller")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkAsRead(c.Request().Context(), callerID, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
