package company

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
)

type LocationServiceImpl struct {
	companyRepo     company.CompanyRepository
	defaultLocation *time.Location
}

// NewLocationService resolves tenant zones from companies.timezone, falling
// back to defaultLocation when a company has none.
func NewLocationService(companyRepo company.CompanyRepository, defaultLocation *time.Location) company.LocationProvider {
	return &LocationServiceImpl{
		companyRepo:     companyRepo,
		defaultLocation: defaultLocation,
	}
}

func (s *LocationServiceImpl) Location(ctx context.Context, companyID string) (*time.Location, error) {
	c, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c.Timezone == nil || *c.Timezone == "" {
		return s.defaultLocation, nil
	}
	loc, err := time.LoadLocation(*c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", company.ErrInvalidTimezone, *c.Timezone)
	}
	return loc, nil
}
