package charting

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentio/dentio/internal/platform/apperr"
	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "dentist", "assistant", "billing"))
	readGroup.GET("/odontograms", h.ListOdontograms)
	readGroup.GET("/odontograms/statistics", h.GetStatistics)
	readGroup.GET("/odontograms/code/:code", h.GetOdontogramByCode)
	readGroup.GET("/odontograms/:id", h.GetOdontogram)

	writeGroup := api.Group("", auth.RequireRole("admin", "dentist"))
	writeGroup.POST("/odontograms", h.CreateOdontogram)
	writeGroup.PUT("/odontograms/:id", h.UpdateOdontogram)
	writeGroup.PATCH("/odontograms/:id/status", h.UpdateOdontogramStatus)
	writeGroup.DELETE("/odontograms/:id", h.DeleteOdontogram)
}

type createRequest struct {
	ClinicID        int64             `json:"clinic_id"`
	PatientID       int64             `json:"patient_id"`
	ExaminationDate string            `json:"examination_date"`
	ToothRecords    []ToothSubmission `json:"tooth_records"`
	GeneralNotes    *string           `json:"general_notes"`
	Diagnosis       *string           `json:"diagnosis"`
	TreatmentPlan   *string           `json:"treatment_plan"`
	UrgencyLevel    int               `json:"urgency_level"`
}

type updateRequest struct {
	ExaminationDate *string           `json:"examination_date"`
	ToothRecords    []ToothSubmission `json:"tooth_records"`
	GeneralNotes    *string           `json:"general_notes"`
	Diagnosis       *string           `json:"diagnosis"`
	TreatmentPlan   *string           `json:"treatment_plan"`
	UrgencyLevel    *int              `json:"urgency_level"`
}

func (h *Handler) CreateOdontogram(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	examDate, err := parseDate(req.ExaminationDate)
	if err != nil {
		return writeError(c, err)
	}
	o, err := h.svc.Create(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), CreateInput{
		ClinicID:        req.ClinicID,
		PatientID:       req.PatientID,
		ExaminationDate: examDate,
		ToothRecords:    req.ToothRecords,
		GeneralNotes:    req.GeneralNotes,
		Diagnosis:       req.Diagnosis,
		TreatmentPlan:   req.TreatmentPlan,
		UrgencyLevel:    req.UrgencyLevel,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOdontogram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := h.svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) GetOdontogramByCode(c echo.Context) error {
	clinicID, err := queryInt64(c, "clinic_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic_id")
	}
	o, err := h.svc.GetByCode(c.Request().Context(), clinicID, c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListOdontograms(c echo.Context) error {
	patientID, err := queryInt64(c, "patient_id")
	if err != nil || patientID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}

	if c.QueryParam("latest") == "true" {
		o, err := h.svc.LatestByPatient(c.Request().Context(), patientID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, o)
	}

	pg := pagination.FromContext(c)
	odos, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(odos, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateOdontogram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in := UpdateInput{
		ToothRecords:  req.ToothRecords,
		GeneralNotes:  req.GeneralNotes,
		Diagnosis:     req.Diagnosis,
		TreatmentPlan: req.TreatmentPlan,
		UrgencyLevel:  req.UrgencyLevel,
	}
	if req.ExaminationDate != nil {
		examDate, err := parseDate(*req.ExaminationDate)
		if err != nil {
			return writeError(c, err)
		}
		in.ExaminationDate = &examDate
	}
	o, err := h.svc.Update(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) UpdateOdontogramStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body struct {
		Status LifecycleStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.UpdateStatus(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), id, body.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteOdontogram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), auth.ActorFromContext(c.Request().Context()), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetStatistics(c echo.Context) error {
	clinicID, err := queryInt64(c, "clinic_id")
	if err != nil || clinicID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "clinic_id is required")
	}
	counts, err := h.svc.Statistics(c.Request().Context(), clinicID)
	if err != nil {
		return writeError(c, err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"clinic_id": clinicID,
		"total":     total,
		"by_status": counts,
	})
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apperr.Validation(apperr.CodeInvalidExaminationDate,
			"examination date %q is not a valid YYYY-MM-DD date", s)
	}
	return t, nil
}

func queryInt64(c echo.Context, name string) (int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// writeError renders an error with its stable code; internal errors keep a
// generic message so storage detail never leaks.
func writeError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), map[string]string{
		"code":    apperr.CodeOf(err),
		"message": apperr.Message(err),
	})
}
