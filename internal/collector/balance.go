package collector

import (
	"context"
	"errors"

	"github.com/yescode/quotaline/internal/models"
)

var balanceHeaders = map[string]string{
	"Accept": "application/json",
}

type balancePayload struct {
	models.BalanceResponse
	TotalBalance *float64 `json:"total_balance"`
}

func checkBalance(p *balancePayload) error {
	if p.TotalBalance == nil {
		return errors.New("missing total_balance")
	}
	return nil
}

// FetchBalance queries the single balance endpoint.
func (f *Fetcher) FetchBalance(ctx context.Context, cred models.Credential) (models.BalanceResponse, bool) {
	payload, err := fetch(ctx, f, f.catalog.Balance, cred, balanceHeaders, checkBalance)
	if err != nil {
		return models.BalanceResponse{}, false
	}
	out := payload.BalanceResponse
	out.TotalBalance = *payload.TotalBalance
	return out, true
}
