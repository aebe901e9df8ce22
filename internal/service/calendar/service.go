package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/calendar"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/daterange"
	"github.com/cmlabs-hris/workforce-engine/internal/pkg/metrics"
)

type CalendarServiceImpl struct {
	tx      database.Transactor
	repo    calendar.Repository
	metrics *metrics.Metrics
}

func NewCalendarService(tx database.Transactor, repo calendar.Repository, m *metrics.Metrics) calendar.Service {
	return &CalendarServiceImpl{tx: tx, repo: repo, metrics: m}
}

// ResolveWorkingDays implements calendar.Resolver.
func (s *CalendarServiceImpl) ResolveWorkingDays(ctx context.Context, companyID string, start, end time.Time) (calendar.WorkingDays, error) {
	start, end = daterange.DateOf(start), daterange.DateOf(end)
	if end.Before(start) {
		return calendar.WorkingDays{}, calendar.ErrInvalidRange
	}

	configs, err := s.repo.ListOverlapping(ctx, companyID, start, end)
	if err != nil {
		return calendar.WorkingDays{}, fmt.Errorf("failed to load calendar configurations: %w", err)
	}

	return calendar.Build(companyID, configs, start, end), nil
}

func (s *CalendarServiceImpl) CreateConfiguration(ctx context.Context, companyID string, req calendar.CreateConfigurationRequest) (calendar.ConfigurationResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.ConfigurationResponse{}, err
	}

	proposal := calendar.Configuration{
		CompanyID: companyID,
		Monday:    req.Monday,
		Tuesday:   req.Tuesday,
		Wednesday: req.Wednesday,
		Thursday:  req.Thursday,
		Friday:    req.Friday,
		Saturday:  req.Saturday,
		Sunday:    req.Sunday,
		ValidFrom: parseDatePtr(req.ValidFrom),
		ValidTo:   parseDatePtr(req.ValidTo),
	}

	var created calendar.Configuration
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockCompany(ctx, companyID); err != nil {
			return err
		}

		existing, err := s.repo.ListByCompany(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list calendar configurations: %w", err)
		}

		if req.CloseOpenEnded {
			if existing, err = s.closeOpenEnded(ctx, existing, *proposal.ValidFrom); err != nil {
				return err
			}
		}

		if err := checkConflicts(existing, proposal); err != nil {
			return err
		}

		created, err = s.repo.Create(ctx, proposal)
		return err
	})
	if err != nil {
		s.observeConflict(err)
		return calendar.ConfigurationResponse{}, err
	}

	slog.Info("calendar configuration created", "company_id", companyID, "configuration_id", created.ID)
	return calendar.NewConfigurationResponse(created), nil
}

// closeOpenEnded ends the open configuration the day before from. The
// returned slice reflects the change.
func (s *CalendarServiceImpl) closeOpenEnded(ctx context.Context, existing []calendar.Configuration, from time.Time) ([]calendar.Configuration, error) {
	for i, c := range existing {
		if !c.IsOpenEnded() {
			continue
		}
		if c.ValidFrom != nil && !c.ValidFrom.Before(from) {
			// Closing would leave it ending before it starts.
			return nil, &calendar.ConflictError{Err: calendar.ErrOverlapConflict, Conflicting: c}
		}
		c.ValidTo = daterange.Ptr(from.AddDate(0, 0, -1))
		updated, err := s.repo.Update(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to close open-ended configuration: %w", err)
		}
		slog.Info("closed open-ended calendar configuration",
			"company_id", c.CompanyID, "configuration_id", c.ID, "valid_to", daterange.Format(*updated.ValidTo))
		existing[i] = updated
	}
	return existing, nil
}

func (s *CalendarServiceImpl) UpdateConfiguration(ctx context.Context, companyID string, req calendar.UpdateConfigurationRequest) (calendar.ConfigurationResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.ConfigurationResponse{}, err
	}

	var updated calendar.Configuration
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockCompany(ctx, companyID); err != nil {
			return err
		}

		current, err := s.repo.GetByID(ctx, req.ID, companyID)
		if err != nil {
			return err
		}

		applyUpdate(&current, req)
		if !current.Range().Valid() {
			return calendar.ErrInvalidRange
		}

		existing, err := s.repo.ListByCompany(ctx, companyID)
		if err != nil {
			return fmt.Errorf("failed to list calendar configurations: %w", err)
		}
		if err := checkConflicts(existing, current); err != nil {
			return err
		}

		updated, err = s.repo.Update(ctx, current)
		return err
	})
	if err != nil {
		s.observeConflict(err)
		return calendar.ConfigurationResponse{}, err
	}

	return calendar.NewConfigurationResponse(updated), nil
}

func (s *CalendarServiceImpl) GetConfiguration(ctx context.Context, companyID string, id string) (calendar.ConfigurationResponse, error) {
	c, err := s.repo.GetByID(ctx, id, companyID)
	if err != nil {
		return calendar.ConfigurationResponse{}, err
	}
	return calendar.NewConfigurationResponse(c), nil
}

func (s *CalendarServiceImpl) ListConfigurations(ctx context.Context, companyID string) ([]calendar.ConfigurationResponse, error) {
	configs, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar configurations: %w", err)
	}

	resp := make([]calendar.ConfigurationResponse, 0, len(configs))
	for _, c := range configs {
		resp = append(resp, calendar.NewConfigurationResponse(c))
	}
	return resp, nil
}

func (s *CalendarServiceImpl) DeleteConfiguration(ctx context.Context, companyID string, id string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockCompany(ctx, companyID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id, companyID)
	})
}

// checkConflicts tests proposal against every stored configuration except
// itself. Open-ended collisions are reported before plain overlaps.
func checkConflicts(existing []calendar.Configuration, proposal calendar.Configuration) error {
	if proposal.IsOpenEnded() {
		for _, c := range existing {
			if c.ID != proposal.ID && c.IsOpenEnded() {
				return &calendar.ConflictError{Err: calendar.ErrOpenRecordExists, Conflicting: c}
			}
		}
	}

	for _, c := range existing {
		if c.ID != proposal.ID && c.Range().Overlaps(proposal.Range()) {
			return &calendar.ConflictError{Err: calendar.ErrOverlapConflict, Conflicting: c}
		}
	}
	return nil
}

func applyUpdate(c *calendar.Configuration, req calendar.UpdateConfigurationRequest) {
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&c.Monday, req.Monday)
	setBool(&c.Tuesday, req.Tuesday)
	setBool(&c.Wednesday, req.Wednesday)
	setBool(&c.Thursday, req.Thursday)
	setBool(&c.Friday, req.Friday)
	setBool(&c.Saturday, req.Saturday)
	setBool(&c.Sunday, req.Sunday)

	if req.ValidFrom != nil {
		c.ValidFrom = parseDatePtr(req.ValidFrom)
	}
	if req.ClearValidFrom {
		c.ValidFrom = nil
	}
	if req.ValidTo != nil {
		c.ValidTo = parseDatePtr(req.ValidTo)
	}
	if req.ClearValidTo {
		c.ValidTo = nil
	}
}

func (s *CalendarServiceImpl) observeConflict(err error) {
	switch {
	case errors.Is(err, calendar.ErrOpenRecordExists):
		s.metrics.CalendarConflict("open_ended")
	case errors.Is(err, calendar.ErrOverlapConflict):
		s.metrics.CalendarConflict("overlap")
	}
}

// parseDatePtr expects an already validated date.
func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := daterange.Parse(*s)
	if err != nil {
		return nil
	}
	return &t
}
