package calendar

import (
	"context"
	"time"
)

// Resolver answers which dates are working days for a tenant.
type Resolver interface {
	ResolveWorkingDays(ctx context.Context, companyID string, start, end time.Time) (WorkingDays, error)
}

type Service interface {
	Resolver

	CreateConfiguration(ctx context.Context, companyID string, req CreateConfigurationRequest) (ConfigurationResponse, error)
	UpdateConfiguration(ctx context.Context, companyID string, req UpdateConfigurationRequest) (ConfigurationResponse, error)
	GetConfiguration(ctx context.Context, companyID string, id string) (ConfigurationResponse, error)
	ListConfigurations(ctx context.Context, companyID string) ([]ConfigurationResponse, error)
	DeleteConfiguration(ctx context.Context, companyID string, id string) error
}
