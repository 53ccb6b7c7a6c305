package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/dto"
	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/service"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// IncidentsHandler exposes the incident intake endpoints.
type IncidentsHandler struct {
	incidents *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents}
}

// ReportSelf handles POST /api/v1/users/me/incidents.
func (h *IncidentsHandler) ReportSelf(c *fiber.Ctx) error {
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("Token is missing")
	}
	if _, err := h.incidents.ReportSelf(c.UserContext(), token); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.SelfReportResponse{ID: service.SelfReportIncidentID})
}

// RegisterWeb handles POST /api/v1/incidents/web.
func (h *IncidentsHandler) RegisterWeb(c *fiber.Ctx) error {
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("Token is missing")
	}
	incident, err := h.incidents.RegisterWeb(c.UserContext(), token, c.Body())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewIncidentResponse(incident))
}

// RegisterMobile handles POST /api/v1/incidents/mobile.
func (h *IncidentsHandler) RegisterMobile(c *fiber.Ctx) error {
	token, ok := auth.TokenFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("Token is missing")
	}
	incident, err := h.incidents.RegisterMobile(c.UserContext(), token, c.Body())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewIncidentResponse(incident))
}
