package dto

type CreateTransactionRequest struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type UpdateTransactionRequest struct {
	Type        *string  `json:"type"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

// TypeTotals reports per-type sums for the queried window. The signed
// sums feed the dashboard header; the absolute sums feed analytics.
type TypeTotals struct {
	Income          float64 `json:"income"`
	Expense         float64 `json:"expense"`
	IncomeAbsolute  float64 `json:"income_absolute"`
	ExpenseAbsolute float64 `json:"expense_absolute"`
}

type TransactionListResponse struct {
	Data        []TransactionResponse `json:"data"`
	Page        int                   `json:"page"`
	TotalPages  int                   `json:"total_pages"`
	TotalAmount TypeTotals            `json:"total_amount"`
}

type CategoryAnalytics struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
	Percentage  string  `json:"percentage"`
}

type AnalyticsResponse struct {
	TotalAmount TypeTotals          `json:"total_amount"`
	Analytics   []CategoryAnalytics `json:"analytics"`
}

type ExtractResponse struct {
	Message string                `json:"message"`
	Data    []TransactionResponse `json:"data"`
}
