package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type CalendarHandler interface {
	WorkingDays(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.Service
}

func NewCalendarHandler(calendarService calendar.Service) CalendarHandler {
	return &calendarHandlerImpl{calendarService: calendarService}
}

func (h *calendarHandlerImpl) WorkingDays(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	start, startOK := validator.IsValidDate(r.URL.Query().Get("start_date"))
	end, endOK := validator.IsValidDate(r.URL.Query().Get("end_date"))
	if !startOK || !endOK {
		response.BadRequest(w, "start_date and end_date must be in YYYY-MM-DD format", nil)
		return
	}

	wd, err := h.calendarService.ResolveWorkingDays(r.Context(), identity.CompanyID, start, end)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, calendar.NewWorkingDaysResponse(start, end, wd))
}

func (h *calendarHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req calendar.CreateConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.calendarService.CreateConfiguration(r.Context(), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Calendar configuration created", result)
}

func (h *calendarHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req calendar.UpdateConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.calendarService.UpdateConfiguration(r.Context(), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *calendarHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	result, err := h.calendarService.GetConfiguration(r.Context(), identity.CompanyID, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *calendarHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	result, err := h.calendarService.ListConfigurations(r.Context(), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *calendarHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	if err := h.calendarService.DeleteConfiguration(r.Context(), identity.CompanyID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Calendar configuration deleted successfully", nil)
}
