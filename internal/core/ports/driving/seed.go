package driving

import (
	"context"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// Seeder loads static content. Running it twice leaves the store unchanged.
type Seeder interface {
	Seed(ctx context.Context, data domain.SeedData) (domain.SeedReport, error)
}
