package handler

const (
	// Activity log descriptions. Stored verbatim on activity_log rows.
	UserActivityLogLoginDescription       = "Logged in"
	UserActivityLogFailedLoginDescription = "Failed login attempt"
	LoanActivityLogCreatedDescription     = "Loan created"
)

// summaryCacheKey is the per-lender cache key for the dashboard summary.
// Every mutation that changes a summary figure deletes this key.
func summaryCacheKey(lenderID string) string {
	return "reports:summary:" + lenderID
}
