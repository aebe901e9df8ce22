package calendar

import (
	"context"
	"time"
)

type Repository interface {
	// LockCompany serializes calendar writes of one tenant until the
	// surrounding transaction ends.
	LockCompany(ctx context.Context, companyID string) error

	Create(ctx context.Context, c Configuration) (Configuration, error)
	Update(ctx context.Context, c Configuration) (Configuration, error)
	Delete(ctx context.Context, id string, companyID string) error
	GetByID(ctx context.Context, id string, companyID string) (Configuration, error)

	// ListByCompany returns every configuration of the tenant ordered by valid_from, unbounded first.
	ListByCompany(ctx context.Context, companyID string) ([]Configuration, error)

	// ListOverlapping returns the configurations whose window shares a date with [start, end].
	ListOverlapping(ctx context.Context, companyID string, start, end time.Time) ([]Configuration, error)
}
