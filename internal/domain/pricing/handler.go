package pricing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/pkg/money"
	"github.com/dentio/dentio/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "dentist", "billing"))
	readGroup.GET("/prices", h.ListPrices)
	readGroup.GET("/prices/resolve", h.ResolvePrice)
	readGroup.GET("/prices/:id", h.GetPrice)

	writeGroup := api.Group("", auth.RequireRole("admin", "billing"))
	writeGroup.POST("/prices", h.CreatePrice)
	writeGroup.PUT("/prices/:id", h.UpdatePrice)
	writeGroup.DELETE("/prices/:id", h.DeactivatePrice)
}

type priceRequest struct {
	ClinicID              int64      `json:"clinic_id"`
	TreatmentID           int64      `json:"treatment_id"`
	BasePriceCents        int64      `json:"base_price_cents"`
	InsurancePriceCents   int64      `json:"insurance_price_cents"`
	PromotionalPriceCents *int64     `json:"promotional_price_cents"`
	PromotionalStartDate  *time.Time `json:"promotional_start_date"`
	PromotionalEndDate    *time.Time `json:"promotional_end_date"`
	EstimatedSessions     int        `json:"estimated_sessions"`
	RequiresAnesthesia    bool       `json:"requires_anesthesia"`
	AnesthesiaCostCents   int64      `json:"anesthesia_cost_cents"`
	MaterialCostCents     int64      `json:"material_cost_cents"`
	EffectiveFrom         *time.Time `json:"effective_from"`
}

func (req *priceRequest) toModel() *ClinicTreatmentPrice {
	p := &ClinicTreatmentPrice{
		ClinicID:             req.ClinicID,
		TreatmentID:          req.TreatmentID,
		BasePrice:            money.FromCents(req.BasePriceCents),
		InsurancePrice:       money.FromCents(req.InsurancePriceCents),
		PromotionalStartDate: req.PromotionalStartDate,
		PromotionalEndDate:   req.PromotionalEndDate,
		EstimatedSessions:    req.EstimatedSessions,
		RequiresAnesthesia:   req.RequiresAnesthesia,
		AnesthesiaCost:       money.FromCents(req.AnesthesiaCostCents),
		MaterialCost:         money.FromCents(req.MaterialCostCents),
	}
	if req.PromotionalPriceCents != nil {
		amount := money.FromCents(*req.PromotionalPriceCents)
		p.PromotionalPrice = &amount
	}
	if req.EffectiveFrom != nil {
		p.EffectiveFrom = *req.EffectiveFrom
	}
	return p
}

func (h *Handler) CreatePrice(c echo.Context) error {
	var req priceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := req.toModel()
	if err := h.svc.CreatePrice(c.Request().Context(), p); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPrice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPrice(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPrices(c echo.Context) error {
	clinicID, err := strconv.ParseInt(c.QueryParam("clinic_id"), 10, 64)
	if err != nil || clinicID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "clinic_id is required")
	}
	pg := pagination.FromContext(c)
	prices, total, err := h.svc.ListPrices(c.Request().Context(), clinicID, pg.Limit, pg.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prices, total, pg.Limit, pg.Offset))
}

func (h *Handler) ResolvePrice(c echo.Context) error {
	clinicID, err := strconv.ParseInt(c.QueryParam("clinic_id"), 10, 64)
	if err != nil || clinicID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "clinic_id is required")
	}
	treatmentID, err := strconv.ParseInt(c.QueryParam("treatment_id"), 10, 64)
	if err != nil || treatmentID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "treatment_id is required")
	}
	asOf := time.Now().UTC()
	if v := c.QueryParam("as_of"); v != "" {
		asOf, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "as_of must be a YYYY-MM-DD date")
		}
	}
	res, err := h.svc.Resolve(c.Request().Context(), clinicID, treatmentID, asOf, money.Amount(0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdatePrice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req priceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p := req.toModel()
	p.ID = id
	p.Active = true
	if err := h.svc.UpdatePrice(c.Request().Context(), p); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeactivatePrice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeactivatePrice(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func writeError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), map[string]string{
		"code":    apperr.CodeOf(err),
		"message": apperr.Message(err),
	})
}
