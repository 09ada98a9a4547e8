package handler

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workpulse/receipt-extraction-service/internal/domain"
	"github.com/workpulse/receipt-extraction-service/internal/model"
	"github.com/workpulse/receipt-extraction-service/internal/service"
)

// maxReceiptImageBytes caps uploaded receipt images at 10 MB
const maxReceiptImageBytes = 10 << 20

// ReceiptHandler handles HTTP requests for receipt-related operations
type ReceiptHandler struct {
	receiptService service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// ScanReceipt handles the POST /receipts/scan endpoint
// @Summary Scan a receipt image
// @Description Upload a receipt image, run text recognition, and extract structured expense data
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param receiptImage formData file true "Receipt image file"
// @Success 201 {object} model.ExpenseResponse "Expense created from receipt"
// @Failure 400 {object} model.ErrorResponse "Bad request"
// @Failure 422 {object} model.ErrorResponse "Unable to extract data"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/scan [post]
func (h *ReceiptHandler) ScanReceipt(c *gin.Context) {
	// Get user ID from context (set by auth middleware)
	userID, exists := c.Get("userID")
	if !exists {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	// Get receipt image from form data
	file, header, err := getFormFile(c, "receiptImage")
	if err != nil {
		respondBadRequest(c, err.Error(), newErrorDetail("receiptImage", "Receipt image is required"))
		return
	}
	defer file.Close()

	if header.Size > maxReceiptImageBytes {
		respondBadRequest(c, "Receipt image is too large", newErrorDetail("receiptImage", "Maximum size is 10MB"))
		return
	}

	// Read file contents
	fileBytes, err := io.ReadAll(io.LimitReader(file, maxReceiptImageBytes))
	if err != nil {
		logError(c, "failed_to_read_file", err, map[string]interface{}{
			"error_type": "file_read_error",
		})
		respondInternalServerError(c, ErrFileProcessing)
		return
	}

	// Process receipt image
	expense, err := h.receiptService.ScanReceipt(c.Request.Context(), fileBytes, userID.(string))
	if err != nil {
		logError(c, "failed_to_scan_receipt", err, map[string]interface{}{
			"error_type":    "service_error",
			"error_message": err.Error(),
			"file_size":     len(fileBytes),
		})
		respondScanError(c, err)
		return
	}

	respondCreated(c, formatExpenseResponse(expense))
}

// ParseReceiptText handles the POST /receipts/parse endpoint
// @Summary Parse raw receipt text
// @Description Run the extraction pipeline over already-recognized receipt text without storing anything
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ParseTextRequest true "Receipt text"
// @Success 200 {object} model.ParsedReceiptResponse "Extraction result"
// @Failure 400 {object} model.ErrorResponse "Bad request"
// @Router /v1/receipts/parse [post]
func (h *ReceiptHandler) ParseReceiptText(c *gin.Context) {
	var req ParseTextRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	outcome := h.receiptService.ParseText(req.Text)
	respondOK(c, formatParseOutcome(outcome))
}

// GetExpenses handles the GET /receipts endpoint
// @Summary List expense receipts
// @Description Get a paginated list of the user's expense receipts with optional filters
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Param vendor query string false "Vendor name filter"
// @Success 200 {object} model.ExpensesListResponse "List of expenses"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts [get]
func (h *ReceiptHandler) GetExpenses(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondBadRequest(c, ErrInvalidQueryParams, newErrorDetail("query", err.Error()))
		return
	}
	filter.UserID = userID.(string)

	paginated, err := h.receiptService.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		respondInternalServerError(c, fmt.Sprintf("Failed to retrieve expenses: %v", err))
		return
	}

	respondOK(c, gin.H{
		"data": formatExpensesResponse(paginated.Data),
		"pagination": gin.H{
			"totalItems":  paginated.Pagination.TotalItems,
			"totalPages":  paginated.Pagination.TotalPages,
			"currentPage": paginated.Pagination.CurrentPage,
			"limit":       paginated.Pagination.Limit,
		},
	})
}

// GetExpenseByID handles the GET /receipts/{expenseId} endpoint
// @Summary Get an expense by ID
// @Description Retrieve a specific expense receipt by its ID
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param expenseId path string true "Expense ID"
// @Success 200 {object} model.ExpenseResponse "Expense details"
// @Failure 400 {object} model.ErrorResponse "Invalid expense ID"
// @Failure 404 {object} model.ErrorResponse "Expense not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{expenseId} [get]
func (h *ReceiptHandler) GetExpenseByID(c *gin.Context) {
	expenseID, err := getPathParam(c, "expenseId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	expense, err := h.receiptService.GetExpenseByID(c.Request.Context(), expenseID)
	if err != nil {
		if strings.Contains(fmt.Sprintf("%v", err), "not found") {
			respondNotFound(c, fmt.Sprintf("Expense not found: %s", expenseID))
		} else {
			respondInternalServerError(c, fmt.Sprintf("Failed to retrieve expense: %v", err))
		}
		return
	}

	respondOK(c, formatExpenseResponse(expense))
}

// DeleteExpense handles the DELETE /receipts/{expenseId} endpoint
// @Summary Delete an expense
// @Description Delete an expense receipt by ID
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param expenseId path string true "Expense ID"
// @Success 204 "Expense deleted successfully"
// @Failure 400 {object} model.ErrorResponse "Invalid expense ID"
// @Failure 404 {object} model.ErrorResponse "Expense not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{expenseId} [delete]
func (h *ReceiptHandler) DeleteExpense(c *gin.Context) {
	expenseID, err := getPathParam(c, "expenseId")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.DeleteExpense(c.Request.Context(), expenseID); err != nil {
		if strings.Contains(fmt.Sprintf("%v", err), "not found") {
			respondNotFound(c, fmt.Sprintf("Expense not found: %s", expenseID))
		} else {
			respondInternalServerError(c, fmt.Sprintf("Failed to delete expense: %v", err))
		}
		return
	}

	respondNoContent(c)
}

// GetExpenseSummary handles the GET /receipts/summary endpoint
// @Summary Get expense summary
// @Description Get aggregate expense statistics for the authenticated user
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date filter (YYYY-MM-DD)"
// @Param endDate query string false "End date filter (YYYY-MM-DD)"
// @Success 200 {object} model.ExpenseSummaryResponse "Expense summary"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/summary [get]
func (h *ReceiptHandler) GetExpenseSummary(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	startDate, endDate := parseDateRange(c)

	summary, err := h.receiptService.GetExpenseSummary(c.Request.Context(), userID.(string), startDate, endDate)
	if err != nil {
		respondInternalServerError(c, fmt.Sprintf("Failed to retrieve expense summary: %v", err))
		return
	}

	respondOK(c, formatExpenseSummaryResponse(summary))
}

// ParseTextRequest represents a raw-text parse request
type ParseTextRequest struct {
	Text string `json:"text" binding:"required"`
	// OCRConfidence is accepted for callers relaying engine output; the parse
	// endpoint does not persist, so it is echoed nowhere.
	OCRConfidence float64 `json:"ocrConfidence"`
}

// respondScanError maps pipeline gate errors to HTTP statuses
func respondScanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoTextDetected):
		respondUnprocessableEntity(c, ErrNoTextDetected)
	case errors.Is(err, service.ErrExtractionIncomplete):
		respondUnprocessableEntity(c, ErrDataExtraction)
	case errors.Is(err, service.ErrLowConfidence):
		respondUnprocessableEntity(c, ErrLowConfidence)
	default:
		respondInternalServerError(c, ErrFileProcessing)
	}
}

// parseExpenseFilter extracts filtering parameters from request
func parseExpenseFilter(c *gin.Context) (domain.ExpenseFilter, error) {
	filter := domain.ExpenseFilter{}

	page, err := getQueryInt(c, "page", 1)
	if err != nil || page < 1 {
		return filter, fmt.Errorf("invalid page number")
	}
	filter.Page = page

	limit, err := getQueryInt(c, "limit", 10)
	if err != nil || limit < 1 {
		return filter, fmt.Errorf("invalid limit")
	}
	if limit > 100 {
		limit = 100
	}
	filter.Limit = limit

	startDateStr := c.Query("startDate")
	if startDateStr != "" {
		startDate, err := parseDate(startDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid startDate format (use YYYY-MM-DD)")
		}
		filter.StartDate = &startDate
	}

	endDateStr := c.Query("endDate")
	if endDateStr != "" {
		endDate, err := parseDate(endDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid endDate format (use YYYY-MM-DD)")
		}
		filter.EndDate = &endDate
	}

	filter.Vendor = c.Query("vendor")

	return filter, nil
}

// formatParseOutcome formats an extraction result for response
func formatParseOutcome(outcome service.ParseOutcome) model.ParsedReceiptResponse {
	parsed := outcome.Parsed

	var date *string
	if parsed.Date != nil {
		formatted := parsed.Date.Format("2006-01-02")
		date = &formatted
	}

	return model.ParsedReceiptResponse{
		Amount:        parsed.Amount,
		Currency:      parsed.Currency,
		Date:          date,
		VendorName:    parsed.VendorName,
		PaymentMethod: parsed.PaymentMethod,
		Confidence: model.ConfidenceBreakdownResponse{
			Amount:  parsed.Confidence.Amount,
			Date:    parsed.Confidence.Date,
			Vendor:  parsed.Confidence.Vendor,
			Payment: parsed.Confidence.Payment,
		},
		OverallConfidence: outcome.OverallConfidence,
		IsValid:           outcome.Valid,
	}
}

// formatExpenseResponse formats an expense for response
func formatExpenseResponse(expense *domain.ExpenseReceipt) gin.H {
	var date *string
	if expense.Date != nil {
		formatted := expense.Date.Format("2006-01-02")
		date = &formatted
	}

	return gin.H{
		"id":             expense.ID,
		"vendor":         expense.Vendor,
		"date":           date,
		"amount":         fmt.Sprintf("%.2f", expense.Amount),
		"currency":       expense.Currency,
		"reportedAmount": fmt.Sprintf("%.2f", expense.ReportedAmount),
		"paymentMethod":  expense.PaymentMethod,
		"confidence":     expense.Confidence,
		"ocrConfidence":  expense.OCRConfidence,
		"imageUrl":       expense.ImageURL,
		"createdAt":      expense.CreatedAt.Format(time.RFC3339),
		"updatedAt":      expense.UpdatedAt.Format(time.RFC3339),
	}
}

// formatExpensesResponse formats a slice of expenses for response
func formatExpensesResponse(expenses []domain.ExpenseReceipt) []gin.H {
	formatted := make([]gin.H, len(expenses))
	for i, expense := range expenses {
		formatted[i] = formatExpenseResponse(&expense)
	}
	return formatted
}

// formatExpenseSummaryResponse formats an expense summary for response
func formatExpenseSummaryResponse(summary *domain.ExpenseSummary) gin.H {
	topVendors := make([]gin.H, len(summary.TopVendors))
	for i, vendor := range summary.TopVendors {
		topVendors[i] = gin.H{
			"vendor":     vendor.Vendor,
			"amount":     fmt.Sprintf("%.2f", vendor.Amount),
			"percentage": vendor.Percentage,
		}
	}

	return gin.H{
		"totalSpend":   fmt.Sprintf("%.2f", summary.TotalSpend),
		"expenseCount": summary.ReceiptCount,
		"averageSpend": fmt.Sprintf("%.2f", summary.AverageSpend),
		"topVendors":   topVendors,
	}
}

// RegisterRoutes registers the API routes for the receipt handler
func (h *ReceiptHandler) RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/v1")

	// Receipt endpoints - all protected with auth
	receipts := api.Group("/receipts", authMiddleware)
	{
		receipts.POST("/scan", h.ScanReceipt)
		receipts.POST("/parse", h.ParseReceiptText)
		receipts.GET("", h.GetExpenses)
		receipts.GET("/summary", h.GetExpenseSummary)
		receipts.GET("/:expenseId", h.GetExpenseByID)
		receipts.DELETE("/:expenseId", h.DeleteExpense)
	}
}
