package model

// ParsedReceiptResponse represents the extraction result for a scanned receipt
type ParsedReceiptResponse struct {
	Amount            *float64                    `json:"amount"`
	Currency          string                      `json:"currency"`
	Date              *string                     `json:"date"`
	VendorName        string                      `json:"vendorName"`
	PaymentMethod     string                      `json:"paymentMethod"`
	Confidence        ConfidenceBreakdownResponse `json:"confidence"`
	OverallConfidence int                         `json:"overallConfidence"`
	IsValid           bool                        `json:"isValid"`
}

// ConfidenceBreakdownResponse represents per-field confidence scores
type ConfidenceBreakdownResponse struct {
	Amount  int `json:"amount"`
	Date    int `json:"date"`
	Vendor  int `json:"vendor"`
	Payment int `json:"payment"`
}

// ExpenseResponse represents a stored expense receipt
type ExpenseResponse struct {
	ID             string  `json:"id"`
	Vendor         string  `json:"vendor"`
	Date           *string `json:"date"`
	Amount         string  `json:"amount"`
	Currency       string  `json:"currency"`
	ReportedAmount string  `json:"reportedAmount"`
	PaymentMethod  string  `json:"paymentMethod"`
	Confidence     int     `json:"confidence"`
	OCRConfidence  float64 `json:"ocrConfidence"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// ExpensesListResponse represents a paginated list of expenses
type ExpensesListResponse struct {
	Data       []ExpenseResponse  `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// PaginationResponse represents pagination metadata
type PaginationResponse struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// ExpenseSummaryResponse represents aggregate expense statistics
type ExpenseSummaryResponse struct {
	TotalSpend   string                  `json:"totalSpend"`
	ExpenseCount int                     `json:"expenseCount"`
	AverageSpend string                  `json:"averageSpend"`
	TopVendors   []VendorSummaryResponse `json:"topVendors"`
}

// VendorSummaryResponse represents vendor-level spending
type VendorSummaryResponse struct {
	Vendor     string  `json:"vendor"`
	Amount     string  `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
