package segment

import (
	"fmt"
	"strconv"

	"github.com/yescode/quotaline/internal/collector"
	"github.com/yescode/quotaline/internal/config"
	"github.com/yescode/quotaline/internal/models"
)

// Display literals for degraded states.
const (
	Offline        = "Offline"
	BalanceUnknown = "Balance Unknown"
	UsageUnknown   = "Usage Unknown"
)

// TodayCost returns the first (newest) record's cost. ok is false for an empty list.
func TodayCost(resp models.UsageResponse) (cost float64, ok bool) {
	if len(resp.DailyUsage) == 0 {
		return 0, false
	}
	return resp.DailyUsage[0].TotalCost, true
}

// FormatUsed renders today's spend, e.g. "Used:$1.23".
func FormatUsed(spent float64) string {
	return fmt.Sprintf("Used:$%.2f", spent)
}

// FormatLeft renders the remaining balance, e.g. "Left:$48.77".
func FormatLeft(balance float64) string {
	return fmt.Sprintf("Left:$%.2f", balance)
}

// FormatWeek renders weekly spend against the weekly ceiling, e.g. "Week: $12.00/$100".
func FormatWeek(spent, limit float64) string {
	return fmt.Sprintf("Week: $%.2f/$%.0f", spent, limit)
}

// FormatRaw renders a number with the shortest exact representation (1.5 -> "1.5", 50 -> "50").
func FormatRaw(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Build reduces fetched data into the display pair. A nil argument means
// that query produced no data. secondaryMode is config.SecondaryBalance or
// config.SecondaryWeekly.
func Build(usage *collector.UsageDetection, balance *models.BalanceResponse, secondaryMode string) models.SegmentResult {
	if usage == nil && balance == nil {
		return models.SegmentResult{
			Primary:   Offline,
			Secondary: Offline,
			Metadata:  map[string]string{models.MetaStatus: models.StatusOffline},
		}
	}

	meta := make(map[string]string)
	status := models.StatusOK

	primary := UsageUnknown
	if usage != nil {
		meta[models.MetaEndpoint] = usage.Endpoint.URL
		cost, ok := TodayCost(usage.Response)
		if !ok {
			status = models.StatusNoDataToday
		}
		primary = FormatUsed(cost)
		meta[models.MetaRawSpent] = FormatRaw(cost)
	}

	secondary := BalanceUnknown
	if balance != nil {
		if secondaryMode == config.SecondaryWeekly {
			secondary = FormatWeek(balance.WeeklySpentBalance, balance.WeeklyLimit)
		} else {
			secondary = FormatLeft(balance.TotalBalance)
		}
		meta[models.MetaTotalBalance] = FormatRaw(balance.TotalBalance)
		meta[models.MetaBalance] = FormatRaw(balance.Balance)
		meta[models.MetaPayAsYouGoBalance] = FormatRaw(balance.PayAsYouGoBalance)
		meta[models.MetaSubscriptionBalance] = FormatRaw(balance.SubscriptionBalance)
		meta[models.MetaWeeklySpent] = FormatRaw(balance.WeeklySpentBalance)
		meta[models.MetaWeeklyLimit] = FormatRaw(balance.WeeklyLimit)
	}

	// An empty usage list outranks a missing half.
	if status == models.StatusOK && (usage == nil || balance == nil) {
		status = models.StatusPartial
	}
	meta[models.MetaStatus] = status

	return models.SegmentResult{
		Primary:   primary,
		Secondary: secondary,
		Metadata:  meta,
	}
}
