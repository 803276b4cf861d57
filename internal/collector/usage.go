package collector

import (
	"context"
	"errors"

	"github.com/yescode/quotaline/internal/models"
)

var usageHeaders = map[string]string{
	"Accept":       "*/*",
	"Content-Type": "application/json",
}

// UsageDetection is the first usage answer together with the endpoint that gave it.
type UsageDetection struct {
	Endpoint models.Endpoint
	Response models.UsageResponse
}

type usagePayload struct {
	DailyUsage *[]models.DailyUsage `json:"daily_usage"`
}

func checkUsage(p *usagePayload) error {
	if p.DailyUsage == nil {
		return errors.New("missing daily_usage")
	}
	return nil
}

// DetectUsage tries each usage endpoint in catalog order and returns the
// first success. Later endpoints are not contacted once one answers.
func (f *Fetcher) DetectUsage(ctx context.Context, cred models.Credential) (UsageDetection, bool) {
	for _, ep := range f.catalog.Usage {
		payload, err := fetch(ctx, f, ep, cred, usageHeaders, checkUsage)
		if err != nil {
			continue
		}
		return UsageDetection{
			Endpoint: ep,
			Response: models.UsageResponse{DailyUsage: *payload.DailyUsage},
		}, true
	}
	return UsageDetection{}, false
}
