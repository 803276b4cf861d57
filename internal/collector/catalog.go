package collector

import "github.com/yescode/quotaline/internal/models"

const (
	defaultUsageURL   = "https://co.yes.vg/api/v1/user/usage/daily"
	defaultBalanceURL = "https://co.yes.vg/api/v1/user/balance"
)

// Catalog is the fixed set of endpoints queried by a Fetcher.
// Usage endpoints are tried in order; there is exactly one balance endpoint.
type Catalog struct {
	Usage   []models.Endpoint
	Balance models.Endpoint
}

// DefaultCatalog returns the production endpoints.
func DefaultCatalog() Catalog {
	return Catalog{
		Usage: []models.Endpoint{
			{URL: defaultUsageURL, Name: "daily_usage"},
		},
		Balance: models.Endpoint{URL: defaultBalanceURL, Name: "balance"},
	}
}

// clone copies the usage slice so a Fetcher never shares it with callers.
func (c Catalog) clone() Catalog {
	usage := make([]models.Endpoint, len(c.Usage))
	copy(usage, c.Usage)
	return Catalog{Usage: usage, Balance: c.Balance}
}
