package model

type PayrollResponse struct {
	TotalSalary         float64         `json:"totalSalary"`
	TotalDeductions     float64         `json:"totalDeductions"`
	PayableAmount       float64         `json:"payableAmount"`
	DeductionsBreakdown []DeductionItem `json:"deductionsBreakdown"`
	BillingCycle        BillingCycle    `json:"billingCycle"`
}

type DeductionItem struct {
	TaskName        string  `json:"taskName"`
	MissedDays      int     `json:"missedDays"`
	DeductionAmount float64 `json:"deductionAmount"`
}

type BillingCycle struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
