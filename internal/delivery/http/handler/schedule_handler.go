package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"doctor-duty-notifier/internal/delivery/dto"
	"doctor-duty-notifier/internal/domain/entity"
	"doctor-duty-notifier/internal/usecase"
	"doctor-duty-notifier/pkg/response"
	"doctor-duty-notifier/pkg/validator"
)

type ScheduleHandler struct {
	scheduleUsecase usecase.ScheduleUsecase
	validator       *validator.CustomValidator
	location        *time.Location
	now             func() time.Time
}

func NewScheduleHandler(scheduleUsecase usecase.ScheduleUsecase, validator *validator.CustomValidator, location *time.Location) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
		location:        location,
		now:             time.Now,
	}
}

func (h *ScheduleHandler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := dto.ScheduleQuery{
		Date:       q.Get("date"),
		DoctorName: q.Get("doctor"),
		Category:   q.Get("category"),
	}

	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedules, err := h.scheduleUsecase.GetSchedules(r.Context(), &query)
	if err != nil {
		response.InternalServerError(w, "Failed to get schedules")
		return
	}

	response.Success(w, http.StatusOK, "Schedules retrieved successfully", schedules)
}

// GetUpcoming matches against the current time, or against ?at=<RFC3339> when given.
func (h *ScheduleHandler) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.location)
	if at := r.URL.Query().Get("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			response.BadRequest(w, "Invalid 'at' parameter, use RFC3339")
			return
		}
		now = parsed.In(h.location)
	}

	upcoming, err := h.scheduleUsecase.GetUpcoming(r.Context(), now)
	if err != nil {
		response.InternalServerError(w, "Failed to get upcoming duties")
		return
	}

	response.Success(w, http.StatusOK, "Upcoming duties retrieved successfully", upcoming)
}

func (h *ScheduleHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduleUsecase.Ingest(r.Context(), entity.ScrapeTriggerManual)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrIngestInProgress):
			response.Conflict(w, "Schedule ingest already in progress")
		case errors.Is(err, usecase.ErrScrapeFailed):
			response.BadGateway(w, "Failed to scrape schedule", err.Error())
		default:
			response.InternalServerError(w, "Failed to ingest schedule")
		}
		return
	}

	response.Success(w, http.StatusOK, result.Message, result)
}

func (h *ScheduleHandler) GetScrapeRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.scheduleUsecase.GetScrapeRuns(r.Context(), limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get scrape runs")
		return
	}

	response.Success(w, http.StatusOK, "Scrape runs retrieved successfully", runs)
}
