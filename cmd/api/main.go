package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/workforce-engine/internal/handler/http"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/workforce-engine/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/workforce-engine/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/workforce-engine/internal/service/calendar"
	companyService "github.com/cmlabs-hris/workforce-engine/internal/service/company"
	payrollService "github.com/cmlabs-hris/workforce-engine/internal/service/payroll"
	shiftService "github.com/cmlabs-hris/workforce-engine/internal/service/shift"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := appHTTP.NewLogger(cfg.App.Env, cfg.LogLevel())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	tx := postgresql.NewTransactor(db)
	workLogRepo := postgresql.NewWorkLogRepository(db)
	calendarRepo := postgresql.NewCalendarRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRepo := postgresql.NewLeaveRequestRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	assignmentRepo := postgresql.NewShiftAssignmentRepository(db)

	m := metrics.New(prometheus.DefaultRegisterer)
	clk := clock.System()

	locations := companyService.NewLocationService(companyRepo, cfg.DefaultLocation())
	calendarSvc := calendarService.NewCalendarService(tx, calendarRepo, m)
	shiftSvc := shiftService.NewShiftService(tx, shiftRepo, assignmentRepo, employeeRepo)
	attendanceSvc := attendanceService.NewAttendanceService(
		tx,
		clk,
		locations,
		workLogRepo,
		employeeRepo,
		leaveRepo,
		calendarSvc,
		shiftSvc,
		m,
	)
	aggregator := attendanceService.NewAggregator(calendarSvc, workLogRepo, leaveRepo)
	payrollSvc := payrollService.NewPayrollService(
		tx,
		clk,
		payrollRepo,
		employeeRepo,
		aggregator,
		m,
		cfg.Payroll.BulkConcurrency,
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:             logger,
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		Metrics:            promhttp.Handler(),
	}, JWTService, appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Calendar:   appHTTP.NewCalendarHandler(calendarSvc),
		Shift:      appHTTP.NewShiftHandler(shiftSvc),
		Payroll:    appHTTP.NewPayrollHandler(payrollSvc),
	})

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler(ctx)
		cron.NewAttendanceJobs(attendanceSvc, employeeRepo, locations, clk).RegisterJobs(scheduler)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
