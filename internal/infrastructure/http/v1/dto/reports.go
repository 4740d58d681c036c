package dto

// SalesReportRequest bounds sales reports. Dates are RFC3339; both are
// optional and default to the last month.
type SalesReportRequest struct {
	From    string `form:"from"`
	To      string `form:"to"`
	Company string `form:"company"`
}

// MovementReportRequest bounds movement ledger reports.
type MovementReportRequest struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Domain string `form:"domain"`
}
