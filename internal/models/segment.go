package models

// Segment status values recorded under MetaStatus.
const (
	StatusOK          = "ok"
	StatusPartial     = "partial"
	StatusNoDataToday = "no_data_today"
	StatusOffline     = "offline"
)

// Metadata keys.
const (
	MetaStatus              = "status"
	MetaRawSpent            = "raw_spent"
	MetaEndpoint            = "endpoint"
	MetaTotalBalance        = "total_balance"
	MetaBalance             = "balance"
	MetaPayAsYouGoBalance   = "pay_as_you_go_balance"
	MetaSubscriptionBalance = "subscription_balance"
	MetaWeeklySpent         = "weekly_spent"
	MetaWeeklyLimit         = "weekly_limit"
)

// InputData is the per-render input handed to every statusline segment.
type InputData struct {
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`
	Cwd       string `json:"cwd,omitempty"`
}

// SegmentResult is what a segment contributes to one statusline render.
type SegmentResult struct {
	Primary   string            `json:"primary"`
	Secondary string            `json:"secondary"`
	Metadata  map[string]string `json:"metadata"`
}

// Status returns the recorded outcome class.
func (r SegmentResult) Status() string {
	return r.Metadata[MetaStatus]
}
