package company

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-engine/internal/domain/company"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompanyRepo map[string]company.Company

func (s stubCompanyRepo) GetByID(_ context.Context, id string) (company.Company, error) {
	c, ok := s[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func strPtr(s string) *string { return &s }

func TestLocation(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	repo := stubCompanyRepo{
		"tz":      {ID: "tz", Timezone: strPtr("America/New_York")},
		"default": {ID: "default"},
		"broken":  {ID: "broken", Timezone: strPtr("Nowhere/Land")},
	}
	svc := NewLocationService(repo, jakarta)
	ctx := context.Background()

	loc, err := svc.Location(ctx, "tz")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	loc, err = svc.Location(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, jakarta, loc)

	_, err = svc.Location(ctx, "broken")
	assert.True(t, errors.Is(err, company.ErrInvalidTimezone))

	_, err = svc.Location(ctx, "missing")
	assert.True(t, errors.Is(err, company.ErrCompanyNotFound))
}
