package domain

import (
	"time"
)

// ConfidenceBreakdown holds the per-field heuristic confidence scores
// produced by the extraction pipeline. Each score is an integer in [0,100]
// and reflects how strongly the corresponding signal pattern matched, not
// whether the field itself resolved to a value.
type ConfidenceBreakdown struct {
	Amount  int `json:"amount"`
	Date    int `json:"date"`
	Vendor  int `json:"vendor"`
	Payment int `json:"payment"`
}

// ParsedReceipt is the structured result of running the extraction pipeline
// over raw OCR text. It is constructed once per extraction call and never
// mutated afterwards.
type ParsedReceipt struct {
	Amount        *float64            `json:"amount"`
	Currency      string              `json:"currency"`
	Date          *time.Time          `json:"date"`
	VendorName    string              `json:"vendor_name"`
	PaymentMethod string              `json:"payment_method"`
	Confidence    ConfidenceBreakdown `json:"confidence"`
}

// ExpenseReceipt represents a scanned receipt accepted into the expense
// system after the extraction gates passed.
type ExpenseReceipt struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Vendor         string     `json:"vendor"`
	Date           *time.Time `json:"date,omitempty"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	ReportedAmount float64    `json:"reported_amount"`
	PaymentMethod  string     `json:"payment_method"`
	Confidence     int        `json:"confidence"`
	OCRConfidence  float64    `json:"ocr_confidence"`
	ImageURL       string     `json:"image_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ExpenseFilter represents filters for querying expense receipts
type ExpenseFilter struct {
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Vendor    string
	Page      int
	Limit     int
}

// Pagination represents pagination metadata
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// PaginatedExpenses represents a paginated list of expense receipts
type PaginatedExpenses struct {
	Data       []ExpenseReceipt `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// ExpenseSummary represents aggregate expense data for the admin dashboard
type ExpenseSummary struct {
	TotalSpend   float64         `json:"totalSpend"`
	ReceiptCount int             `json:"receiptCount"`
	AverageSpend float64         `json:"averageSpend"`
	TopVendors   []VendorSummary `json:"topVendors"`
}

// VendorSummary represents aggregate spend for a single vendor
type VendorSummary struct {
	Vendor     string  `json:"vendor"`
	Amount     float64 `json:"amount"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
