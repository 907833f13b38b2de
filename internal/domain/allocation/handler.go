package allocation

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "doctor", "nurse"))
	g.POST("/resources/as", h.AssignResources)
	g.DELETE("/resources/remove/:patientId/:resourceId", h.ReleaseResource)
	g.PATCH("/discharge/:id", h.DischargePatient)
}

type assignRequest struct {
	PatientID   uuid.UUID   `json:"patientId"`
	ResourceIDs []uuid.UUID `json:"resourceIds"`
}

type assignResponse struct {
	Resources []uuid.UUID `json:"resources"`
}

func (h *Handler) AssignResources(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patientId is required")
	}
	p, err := h.svc.AssignResources(c.Request().Context(), req.PatientID, req.ResourceIDs)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, assignResponse{Resources: p.AssignedResources})
}

func (h *Handler) ReleaseResource(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}
	resourceID, err := uuid.Parse(c.Param("resourceId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid resourceId")
	}
	if err := h.svc.ReleaseResource(c.Request().Context(), patientID, resourceID); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) DischargePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.DischargePatient(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}
