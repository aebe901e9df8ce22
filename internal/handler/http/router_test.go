package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/cmlabs-hris/workforce-engine/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/workforce-engine/internal/service/calendar"
	companyService "github.com/cmlabs-hris/workforce-engine/internal/service/company"
	payrollService "github.com/cmlabs-hris/workforce-engine/internal/service/payroll"
	shiftService "github.com/cmlabs-hris/workforce-engine/internal/service/shift"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t         *testing.T
	router    http.Handler
	store     *memory.Store
	clock     *clock.Mock
	jwt       jwt.Service
	companyID string
	emp       employee.Employee
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	store := memory.NewStore()
	c := store.AddCompany(company.Company{Name: "Acme"})
	base := decimal.NewFromInt(3000)
	emp := store.AddEmployee(employee.Employee{CompanyID: c.ID, EmployeeCode: "E001", FullName: "Alice", BaseSalary: &base})

	clk := clock.NewMock(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	locations := companyService.NewLocationService(store.Companies(), time.UTC)
	cal := calendarService.NewCalendarService(store, store.Calendars(), m)
	shifts := shiftService.NewShiftService(store, store.Shifts(), store.ShiftAssignments(), store.Employees())
	att := attendanceService.NewAttendanceService(store, clk, locations, store.WorkLogs(), store.Employees(), store.LeaveRequests(), cal, shifts, m)
	agg := attendanceService.NewAggregator(cal, store.WorkLogs(), store.LeaveRequests())
	pay := payrollService.NewPayrollService(store, clk, store.Payroll(), store.Employees(), agg, m, 2)

	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	router := NewRouter(RouterOptions{
		AllowedOrigins:     []string{"http://localhost:3000"},
		RateLimitPerMinute: rateLimit,
		Metrics:            promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, jwtService, Handlers{
		Attendance: NewAttendanceHandler(att),
		Calendar:   NewCalendarHandler(cal),
		Shift:      NewShiftHandler(shifts),
		Payroll:    NewPayrollHandler(pay),
	})

	return &testServer{t: t, router: router, store: store, clock: clk, jwt: jwtService, companyID: c.ID, emp: emp}
}

func (s *testServer) token(role string) string {
	s.t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(jwt.Identity{
		UserID:     "user-1",
		EmployeeID: s.emp.ID,
		CompanyID:  s.companyID,
		Role:       role,
	})
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.168.1.100:51000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRouterRequiresToken(t *testing.T) {
	s := newTestServer(t, 30)

	rec, _ := s.do(http.MethodGet, "/api/v1/attendance/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/attendance/status", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClockFlow(t *testing.T) {
	s := newTestServer(t, 30)
	token := s.token(jwt.RoleEmployee)

	rec, env := s.do(http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	rec, env = s.do(http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "BUSINESS_RULE_VIOLATION", env.Error.Code)

	rec, env = s.do(http.MethodGet, "/api/v1/attendance/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "clocked_in", status.State)

	s.clock.Advance(8 * time.Hour)
	lat, lng := -6.2, 106.8
	rec, env = s.do(http.MethodPost, "/api/v1/attendance/clock-out", token, map[string]any{"latitude": lat, "longitude": lng})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var log struct {
		TotalMinutes int `json:"total_minutes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &log))
	assert.Equal(t, 480, log.TotalMinutes)

	rec, _ = s.do(http.MethodPost, "/api/v1/attendance/clock-out", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env = s.do(http.MethodPost, "/api/v1/attendance/clock-in", token, map[string]any{"latitude": lat})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestClockEndpointsAreRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	token := s.token(jwt.RoleEmployee)

	s.do(http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	s.do(http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	rec, _ := s.do(http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are not limited.
	rec, _ = s.do(http.MethodGet, "/api/v1/attendance/status", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestManagerRoutesRejectEmployees(t *testing.T) {
	s := newTestServer(t, 30)

	rec, _ := s.do(http.MethodPost, "/api/v1/calendar/configurations", s.token(jwt.RoleEmployee), map[string]any{"monday": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/payroll/components", s.token(jwt.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(http.MethodGet, "/api/v1/payroll/components", s.token(jwt.RoleManager), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalendarConflictReturnsConflictingRecord(t *testing.T) {
	s := newTestServer(t, 30)
	token := s.token(jwt.RoleAdmin)

	body := map[string]any{"monday": true, "tuesday": true, "valid_from": "2025-01-01"}
	rec, _ := s.do(http.MethodPost, "/api/v1/calendar/configurations", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := s.do(http.MethodPost, "/api/v1/calendar/configurations", token, map[string]any{"friday": true, "valid_from": "2025-06-01"})
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflicting struct {
		ValidFrom string `json:"valid_from"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &conflicting))
	assert.Equal(t, "2025-01-01", conflicting.ValidFrom)

	rec, env = s.do(http.MethodGet, "/api/v1/calendar/working-days?start_date=2025-03-10&end_date=2025-03-16", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wd struct {
		WorkingDates []string `json:"working_dates"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &wd))
	assert.Equal(t, []string{"2025-03-10", "2025-03-11"}, wd.WorkingDates)
}

func TestBulkRecordReportsPartialFailure(t *testing.T) {
	s := newTestServer(t, 30)
	token := s.token(jwt.RoleManager)

	rec, env := s.do(http.MethodPost, "/api/v1/attendance/records/bulk", token, map[string]any{
		"records": []map[string]any{
			{"employee_id": s.emp.ID, "log_date": "2025-03-03", "status": "present", "clock_in": "09:00", "clock_out": "17:00"},
			{"employee_id": "nope", "log_date": "2025-03-04", "status": "present"},
		},
	})
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	var result struct {
		Recorded int `json:"recorded"`
		Failed   []struct {
			Index int `json:"index"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Recorded)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
}

func TestPayrollSlipLifecycle(t *testing.T) {
	s := newTestServer(t, 30)
	token := s.token(jwt.RoleManager)

	rec, env := s.do(http.MethodPost, "/api/v1/payroll/slips/generate", token, map[string]any{"employee_id": s.emp.ID, "month": 4, "year": 2025})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var slip struct {
		ID         string `json:"id"`
		LOPDays    string `json:"lop_days"`
		NetPayable string `json:"net_payable"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &slip))
	// No attendance at all: every working day is a no-show.
	assert.Equal(t, "22", slip.LOPDays)
	assert.Equal(t, "0", slip.NetPayable)
	assert.Equal(t, "generated", slip.Status)

	rec, _ = s.do(http.MethodPost, "/api/v1/payroll/slips/"+slip.ID+"/pay", token, map[string]any{"payment_method": "bank_transfer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = s.do(http.MethodPost, "/api/v1/payroll/slips/"+slip.ID+"/pay", token, map[string]any{"payment_method": "bank_transfer"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/payroll/slips/recompute", token, map[string]any{"employee_id": s.emp.ID, "month": 4, "year": 2025})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/payroll/slips/generate", token, map[string]any{"employee_id": s.emp.ID, "month": 13, "year": 2025})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env = s.do(http.MethodGet, "/api/v1/payroll/slips?month=4&year=2025", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slips []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &slips))
	assert.Len(t, slips, 1)

	rec, _ = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `workforce_salary_slips_total{result="created"} 1`)
}
