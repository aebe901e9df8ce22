package http

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetCurrentStatus(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
	Record(w http.ResponseWriter, r *http.Request)
	BulkRecord(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	MarkAbsentees(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	cc, ok := decodeClockContext(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockIn(r.Context(), identity.CompanyID, identity.EmployeeID, cc)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	cc, ok := decodeClockContext(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.ClockOut(r.Context(), identity.CompanyID, identity.EmployeeID, cc)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// decodeClockContext reads the optional geolocation body and the caller's IP.
func decodeClockContext(w http.ResponseWriter, r *http.Request) (attendance.ClockContext, bool) {
	var cc attendance.ClockContext
	if err := json.NewDecoder(r.Body).Decode(&cc); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return cc, false
	}
	cc.IP = clientIP(r)

	if err := cc.Validate(); err != nil {
		response.HandleError(w, err)
		return cc, false
	}
	return cc, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) == nil {
		return ""
	}
	return host
}

// GetCurrentStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetCurrentStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	result, err := h.attendanceService.GetCurrentStatus(r.Context(), identity.CompanyID, identity.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthly implements AttendanceHandler. Managers may pass employee_id;
// everyone else gets their own summary.
func (h *attendanceHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	month, year, err := periodFromQuery(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := identity.EmployeeID
	if e := r.URL.Query().Get("employee_id"); e != "" && e != identity.EmployeeID {
		if !middleware.IsManager(identity) {
			response.Forbidden(w, "Manager access required")
			return
		}
		employeeID = e
	}
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}

	result, err := h.attendanceService.GetMonthlyAttendance(r.Context(), identity.CompanyID, employeeID, month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Record implements AttendanceHandler.
func (h *attendanceHandlerImpl) Record(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req attendance.RecordAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.RecordAttendance(r.Context(), identity.CompanyID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// BulkRecord implements AttendanceHandler.
func (h *attendanceHandlerImpl) BulkRecord(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req struct {
		Records []attendance.RecordAttendanceRequest `json:"records"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if len(req.Records) == 0 {
		response.ValidationError(w, map[string]string{"records": "at least one record is required"})
		return
	}

	result, err := h.attendanceService.BulkRecordAttendance(r.Context(), identity.CompanyID, req.Records)
	if err != nil && len(result.Failed) == 0 {
		response.HandleError(w, err)
		return
	}
	if len(result.Failed) > 0 {
		response.Partial(w, "Some records failed", result)
		return
	}

	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	employeeID := chi.URLParam(r, "employeeId")
	logDate, ok := validator.IsValidDate(chi.URLParam(r, "date"))
	if !ok {
		response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
		return
	}

	if err := h.attendanceService.DeleteWorkLog(r.Context(), identity.CompanyID, employeeID, logDate); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work log deleted successfully", nil)
}

// MarkAbsentees implements AttendanceHandler.
func (h *attendanceHandlerImpl) MarkAbsentees(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	date, ok := validator.IsValidDate(req.Date)
	if !ok {
		response.ValidationError(w, map[string]string{"date": "date must be in YYYY-MM-DD format"})
		return
	}

	marked, err := h.attendanceService.MarkAbsentees(r.Context(), identity.CompanyID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int{"marked": marked})
}

// periodFromQuery reads month and year query parameters.
func periodFromQuery(r *http.Request) (int, int, error) {
	month, errMonth := strconv.Atoi(r.URL.Query().Get("month"))
	year, errYear := strconv.Atoi(r.URL.Query().Get("year"))
	if errMonth != nil || errYear != nil || !validator.IsValidPeriod(month, year) {
		return 0, 0, validator.ValidationErrors{
			{Field: "month", Message: "month (1-12) and year are required"},
		}
	}
	return month, year, nil
}
