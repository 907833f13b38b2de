package coverage

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/auth"
	"github.com/mohamedaminesabehy/pisonar-sub001/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin"))

	admin.POST("/insurance", h.create(KindInsurance))
	admin.GET("/insurance", h.list(KindInsurance))
	admin.GET("/insurance/:id", h.get(KindInsurance))
	admin.PUT("/insurance/:id", h.update(KindInsurance))
	admin.DELETE("/insurance/:id", h.delete(KindInsurance))

	admin.POST("/cnam", h.create(KindCNAM))
	admin.GET("/cnam", h.list(KindCNAM))
	admin.GET("/cnam/:id", h.get(KindCNAM))
	admin.PUT("/cnam/:id", h.update(KindCNAM))
	admin.DELETE("/cnam/:id", h.delete(KindCNAM))
}

// insuranceRequest and cnamRequest differ only in the name of the cutoff
// date field on the wire.
type insuranceRequest struct {
	Code           string `json:"code"`
	Percentage     int    `json:"percentage"`
	ExpirationDate string `json:"expiration_date"`
}

type cnamRequest struct {
	Code             string `json:"code"`
	Percentage       int    `json:"percentage"`
	CancellationDate string `json:"cancellation_date"`
}

func bindInput(c echo.Context, kind Kind) (Input, error) {
	if kind == KindCNAM {
		var req cnamRequest
		if err := c.Bind(&req); err != nil {
			return Input{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return Input{Code: req.Code, Percentage: req.Percentage, CutoffDate: req.CancellationDate}, nil
	}
	var req insuranceRequest
	if err := c.Bind(&req); err != nil {
		return Input{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return Input{Code: req.Code, Percentage: req.Percentage, CutoffDate: req.ExpirationDate}, nil
}

func (h *Handler) create(kind Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := bindInput(c, kind)
		if err != nil {
			return err
		}
		rec, err := h.svc.Create(c.Request().Context(), kind, in)
		if err != nil {
			return apperr.ToHTTP(err)
		}
		return c.JSON(http.StatusCreated, rec.ToJSON())
	}
}

func (h *Handler) get(kind Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		rec, err := h.svc.Get(c.Request().Context(), kind, id)
		if err != nil {
			return apperr.ToHTTP(err)
		}
		return c.JSON(http.StatusOK, rec.ToJSON())
	}
}

func (h *Handler) list(kind Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		pg := pagination.FromContext(c)
		items, total, err := h.svc.List(c.Request().Context(), kind, pg.Limit, pg.Offset)
		if err != nil {
			return apperr.ToHTTP(err)
		}
		out := make([]map[string]interface{}, 0, len(items))
		for _, rec := range items {
			out = append(out, rec.ToJSON())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(out, total, pg.Limit, pg.Offset))
	}
}

func (h *Handler) update(kind Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		in, err := bindInput(c, kind)
		if err != nil {
			return err
		}
		rec, err := h.svc.Update(c.Request().Context(), kind, id, in)
		if err != nil {
			return apperr.ToHTTP(err)
		}
		return c.JSON(http.StatusOK, rec.ToJSON())
	}
}

func (h *Handler) delete(kind Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		if err := h.svc.Delete(c.Request().Context(), kind, id); err != nil {
			return apperr.ToHTTP(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
