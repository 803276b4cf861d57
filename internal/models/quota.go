package models

// Endpoint identifies one remote address for the usage or balance query.
type Endpoint struct {
	URL  string
	Name string
}

// DailyUsage is one record of the daily usage list.
type DailyUsage struct {
	Date      string  `json:"date"`
	TotalCost float64 `json:"total_cost"`
}

// UsageResponse is the body returned by the daily usage endpoint.
// Records are newest-first.
type UsageResponse struct {
	DailyUsage []DailyUsage `json:"daily_usage"`
}

// BalanceResponse is the body returned by the balance endpoint.
type BalanceResponse struct {
	Balance             float64 `json:"balance"`
	PayAsYouGoBalance   float64 `json:"pay_as_you_go_balance"`
	SubscriptionBalance float64 `json:"subscription_balance"`
	TotalBalance        float64 `json:"total_balance"`
	WeeklyLimit         float64 `json:"weekly_limit"`
	WeeklySpentBalance  float64 `json:"weekly_spent_balance"`
}
