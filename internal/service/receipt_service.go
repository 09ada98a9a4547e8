package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/receipt-extraction-service/internal/domain"
	"github.com/workpulse/receipt-extraction-service/internal/extractor"
	"github.com/workpulse/receipt-extraction-service/internal/ocr"
	"github.com/workpulse/receipt-extraction-service/internal/repository"
)

// Gate errors surfaced to callers. The pipeline itself never fails; these
// are acceptance decisions on its output.
var (
	ErrNoTextDetected       = errors.New("no text detected")
	ErrExtractionIncomplete = errors.New("could not extract required information")
	ErrLowConfidence        = errors.New("low confidence")
)

// ReceiptServiceError represents an error in the receipt service
type ReceiptServiceError struct {
	Op  string
	Err error
}

func (e *ReceiptServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

func (e *ReceiptServiceError) Unwrap() error {
	return e.Err
}

// TextRecognizer is the external OCR collaborator
type TextRecognizer interface {
	RecognizeImage(ctx context.Context, imageData []byte) (*ocr.Result, error)
}

// ImageUploader stores receipt images and returns a public URL
type ImageUploader interface {
	UploadReceiptImage(imageData []byte, filename string) (string, error)
}

// CurrencyConverter converts between currencies
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (float64, error)
}

// ParseOutcome bundles the pipeline output with its derived decisions
type ParseOutcome struct {
	Parsed            domain.ParsedReceipt
	OverallConfidence int
	Valid             bool
}

// ReceiptService defines the interface for receipt-related business logic
type ReceiptService interface {
	// Scan pipeline
	ScanReceipt(ctx context.Context, imageData []byte, userID string) (*domain.ExpenseReceipt, error)
	ParseText(text string) ParseOutcome
	EvaluateText(text string) (ParseOutcome, error)

	// Expense operations
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseReceipt, error)
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) (*domain.PaginatedExpenses, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	GetExpenseSummary(ctx context.Context, userID string, startDate, endDate *string) (*domain.ExpenseSummary, error)
}

// ReceiptServiceImpl implements the ReceiptService interface
type ReceiptServiceImpl struct {
	repository        repository.ExpenseRepository
	recognizer        TextRecognizer
	uploader          ImageUploader
	converter         CurrencyConverter
	extractor         *extractor.Extractor
	minConfidence     int
	reportingCurrency string
	workerPool        chan struct{}
}

// Options configures a ReceiptService
type Options struct {
	Repository        repository.ExpenseRepository
	Recognizer        TextRecognizer
	Uploader          ImageUploader
	Converter         CurrencyConverter
	Extractor         *extractor.Extractor
	MinConfidence     int
	ReportingCurrency string
	MaxWorkers        int
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(opts Options) ReceiptService {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 5
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = 40
	}
	if opts.ReportingCurrency == "" {
		opts.ReportingCurrency = "USD"
	}
	if opts.Extractor == nil {
		opts.Extractor = extractor.New()
	}

	return &ReceiptServiceImpl{
		repository:        opts.Repository,
		recognizer:        opts.Recognizer,
		uploader:          opts.Uploader,
		converter:         opts.Converter,
		extractor:         opts.Extractor,
		minConfidence:     opts.MinConfidence,
		reportingCurrency: opts.ReportingCurrency,
		workerPool:        make(chan struct{}, opts.MaxWorkers),
	}
}

// ParseText runs the pure extraction pipeline over OCR text and reports
// the derived decisions without applying any gate.
func (s *ReceiptServiceImpl) ParseText(text string) ParseOutcome {
	parsed := s.extractor.Parse(text)
	return ParseOutcome{
		Parsed:            parsed,
		OverallConfidence: extractor.OverallConfidence(parsed),
		Valid:             extractor.IsValid(parsed),
	}
}

// EvaluateText runs the pipeline and applies the three acceptance gates:
// blank text, structural validity, and the confidence threshold.
func (s *ReceiptServiceImpl) EvaluateText(text string) (ParseOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return ParseOutcome{}, ErrNoTextDetected
	}

	outcome := s.ParseText(text)
	if !outcome.Valid {
		return outcome, ErrExtractionIncomplete
	}
	if outcome.OverallConfidence < s.minConfidence {
		return outcome, ErrLowConfidence
	}

	return outcome, nil
}

// ScanReceipt processes a receipt image end to end: store the image, run
// recognition, extract structured data, apply the gates, and persist the
// accepted expense.
func (s *ReceiptServiceImpl) ScanReceipt(ctx context.Context, imageData []byte, userID string) (*domain.ExpenseReceipt, error) {
	// Acquire worker from pool
	select {
	case s.workerPool <- struct{}{}:
		defer func() {
			<-s.workerPool
		}()
	case <-ctx.Done():
		return nil, &ReceiptServiceError{
			Op:  "acquire_worker",
			Err: ctx.Err(),
		}
	}

	// Upload the image; the scan continues without a URL on failure
	var imageURL string
	if s.uploader != nil {
		filename := fmt.Sprintf("receipt_%s.png", uuid.New().String())
		url, err := s.uploader.UploadReceiptImage(imageData, filename)
		if err != nil {
			log.Printf("Error uploading receipt image: %v", err)
		} else {
			imageURL = url
		}
	}

	// Recognize text
	recognition, err := s.recognizer.RecognizeImage(ctx, imageData)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "recognize_text",
			Err: err,
		}
	}

	// Extract and gate
	outcome, err := s.EvaluateText(recognition.Text)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "evaluate_text",
			Err: err,
		}
	}

	expense := s.toExpense(ctx, outcome, userID, recognition.Confidence, imageURL)

	// Save expense to database
	stored, err := s.repository.CreateExpense(ctx, expense)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "store_expense",
			Err: err,
		}
	}

	return stored, nil
}

// toExpense converts an accepted parse outcome into the stored entity,
// converting the amount into the portal's reporting currency when needed.
// Conversion failure falls back to the native amount.
func (s *ReceiptServiceImpl) toExpense(ctx context.Context, outcome ParseOutcome, userID string, ocrConfidence float64, imageURL string) *domain.ExpenseReceipt {
	parsed := outcome.Parsed
	amount := *parsed.Amount

	reported := amount
	if s.converter != nil && parsed.Currency != s.reportingCurrency {
		converted, err := s.converter.Convert(ctx, amount, parsed.Currency, s.reportingCurrency)
		if err != nil {
			log.Printf("Currency conversion failed for %s: %v", parsed.Currency, err)
		} else {
			reported = converted
		}
	}

	now := time.Now()
	return &domain.ExpenseReceipt{
		UserID:         userID,
		Vendor:         parsed.VendorName,
		Date:           parsed.Date,
		Amount:         amount,
		Currency:       parsed.Currency,
		ReportedAmount: reported,
		PaymentMethod:  parsed.PaymentMethod,
		Confidence:     outcome.OverallConfidence,
		OCRConfidence:  ocrConfidence,
		ImageURL:       imageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// GetExpenseByID retrieves an expense receipt by ID
func (s *ReceiptServiceImpl) GetExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseReceipt, error) {
	expense, err := s.repository.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "get_expense",
			Err: err,
		}
	}
	return expense, nil
}

// ListExpenses retrieves a paginated list of expense receipts
func (s *ReceiptServiceImpl) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) (*domain.PaginatedExpenses, error) {
	expenses, err := s.repository.ListExpenses(ctx, filter)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "list_expenses",
			Err: err,
		}
	}
	return expenses, nil
}

// DeleteExpense deletes an expense receipt
func (s *ReceiptServiceImpl) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.repository.DeleteExpense(ctx, expenseID); err != nil {
		return &ReceiptServiceError{
			Op:  "delete_expense",
			Err: err,
		}
	}
	return nil
}

// GetExpenseSummary retrieves aggregate expense data for the dashboard
func (s *ReceiptServiceImpl) GetExpenseSummary(ctx context.Context, userID string, startDate, endDate *string) (*domain.ExpenseSummary, error) {
	summary, err := s.repository.GetExpenseSummary(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, &ReceiptServiceError{
			Op:  "get_expense_summary",
			Err: err,
		}
	}
	return summary, nil
}
