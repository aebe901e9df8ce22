package company

import (
	"context"
	"time"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)
}

// LocationProvider resolves the wall-clock zone a tenant's dates are kept in.
type LocationProvider interface {
	Location(ctx context.Context, companyID string) (*time.Location, error)
}
