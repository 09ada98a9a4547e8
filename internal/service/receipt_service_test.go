package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workpulse/receipt-extraction-service/internal/domain"
	"github.com/workpulse/receipt-extraction-service/internal/extractor"
	"github.com/workpulse/receipt-extraction-service/internal/ocr"
)

var serviceTestNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type fakeRecognizer struct {
	result *ocr.Result
	err    error
}

func (f *fakeRecognizer) RecognizeImage(ctx context.Context, imageData []byte) (*ocr.Result, error) {
	return f.result, f.err
}

type fakeRepository struct {
	created *domain.ExpenseReceipt
	err     error
}

func (f *fakeRepository) CreateExpense(ctx context.Context, expense *domain.ExpenseReceipt) (*domain.ExpenseReceipt, error) {
	if f.err != nil {
		return nil, f.err
	}
	expense.ID = "exp-1"
	f.created = expense
	return expense, nil
}

func (f *fakeRepository) GetExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseReceipt, error) {
	return f.created, f.err
}

func (f *fakeRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	return f.err
}

func (f *fakeRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) (*domain.PaginatedExpenses, error) {
	return &domain.PaginatedExpenses{}, f.err
}

func (f *fakeRepository) GetExpenseSummary(ctx context.Context, userID string, startDate, endDate *string) (*domain.ExpenseSummary, error) {
	return &domain.ExpenseSummary{}, f.err
}

type fakeUploader struct {
	url string
	err error
}

func (f *fakeUploader) UploadReceiptImage(imageData []byte, filename string) (string, error) {
	return f.url, f.err
}

type fakeConverter struct {
	rate float64
	err  error
}

func (f *fakeConverter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return amount * f.rate, nil
}

func testExtractor() *extractor.Extractor {
	return extractor.NewWithClock(func() time.Time { return serviceTestNow })
}

func newTestService(recognizer TextRecognizer, repo *fakeRepository, uploader ImageUploader, converter CurrencyConverter) ReceiptService {
	return NewReceiptService(Options{
		Repository:        repo,
		Recognizer:        recognizer,
		Uploader:          uploader,
		Converter:         converter,
		Extractor:         testExtractor(),
		MinConfidence:     40,
		ReportingCurrency: "USD",
		MaxWorkers:        2,
	})
}

const goodReceiptText = "Joe's Coffee Shop\n03/15/2024\nTOTAL $45.99\nVISA 4242"

func TestScanReceiptHappyPath(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{Text: goodReceiptText, Confidence: 93.5}}
	uploader := &fakeUploader{url: "https://storage.example.com/receipt.png"}

	svc := newTestService(recognizer, repo, uploader, nil)

	expense, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "exp-1", expense.ID)
	assert.Equal(t, "user-1", expense.UserID)
	assert.Equal(t, "Joe's Coffee Shop", expense.Vendor)
	assert.Equal(t, 45.99, expense.Amount)
	assert.Equal(t, "USD", expense.Currency)
	assert.Equal(t, "Visa", expense.PaymentMethod)
	assert.Equal(t, 93.5, expense.OCRConfidence)
	assert.Equal(t, "https://storage.example.com/receipt.png", expense.ImageURL)
	require.NotNil(t, expense.Date)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), *expense.Date)
}

func TestScanReceiptBlankTextRejected(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{Text: "   \n  ", Confidence: 10}}

	svc := newTestService(recognizer, repo, nil, nil)

	_, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTextDetected)
	assert.Nil(t, repo.created)
}

func TestScanReceiptNoAmountRejected(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{Text: "Joe's Coffee Shop\nthanks for visiting", Confidence: 80}}

	svc := newTestService(recognizer, repo, nil, nil)

	_, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	assert.ErrorIs(t, err, ErrExtractionIncomplete)
}

func TestScanReceiptLowConfidenceRejected(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{Text: "ab\n9.99", Confidence: 50}}

	svc := NewReceiptService(Options{
		Repository:    repo,
		Recognizer:    recognizer,
		Extractor:     testExtractor(),
		MinConfidence: 60,
	})

	_, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	assert.ErrorIs(t, err, ErrLowConfidence)
}

func TestScanReceiptRecognizerFailure(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{err: errors.New("engine down")}

	svc := newTestService(recognizer, repo, nil, nil)

	_, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	require.Error(t, err)

	var svcErr *ReceiptServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "recognize_text", svcErr.Op)
}

func TestScanReceiptUploadFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{Text: goodReceiptText, Confidence: 90}}
	uploader := &fakeUploader{err: errors.New("bucket unavailable")}

	svc := newTestService(recognizer, repo, uploader, nil)

	expense, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	require.NoError(t, err)
	assert.Empty(t, expense.ImageURL)
}

func TestScanReceiptConvertsToReportingCurrency(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{
		Text:       "Padaria Central\n03/15/2024\nTOTAL R$ 100.00\nVISA",
		Confidence: 90,
	}}
	converter := &fakeConverter{rate: 0.20}

	svc := newTestService(recognizer, repo, nil, converter)

	expense, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "BRL", expense.Currency)
	assert.Equal(t, 100.00, expense.Amount)
	assert.InDelta(t, 20.00, expense.ReportedAmount, 0.001)
}

func TestScanReceiptConversionFailureKeepsNativeAmount(t *testing.T) {
	repo := &fakeRepository{}
	recognizer := &fakeRecognizer{result: &ocr.Result{
		Text:       "Padaria Central\n03/15/2024\nTOTAL R$ 100.00",
		Confidence: 90,
	}}
	converter := &fakeConverter{err: errors.New("rates unavailable")}

	svc := newTestService(recognizer, repo, nil, converter)

	expense, err := svc.ScanReceipt(context.Background(), []byte("image"), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100.00, expense.ReportedAmount)
}

func TestScanReceiptContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Fill the single worker slot so the scan has to wait
	svc := NewReceiptService(Options{
		Repository: &fakeRepository{},
		Recognizer: &fakeRecognizer{result: &ocr.Result{Text: goodReceiptText}},
		Extractor:  testExtractor(),
		MaxWorkers: 1,
	}).(*ReceiptServiceImpl)
	svc.workerPool <- struct{}{}

	_, err := svc.ScanReceipt(ctx, []byte("image"), "user-1")
	require.Error(t, err)

	var svcErr *ReceiptServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "acquire_worker", svcErr.Op)
}

func TestEvaluateTextGateOrder(t *testing.T) {
	svc := newTestService(nil, &fakeRepository{}, nil, nil).(*ReceiptServiceImpl)

	_, err := svc.EvaluateText("")
	assert.ErrorIs(t, err, ErrNoTextDetected)

	_, err = svc.EvaluateText("no numbers here at all")
	assert.ErrorIs(t, err, ErrExtractionIncomplete)

	outcome, err := svc.EvaluateText(goodReceiptText)
	require.NoError(t, err)
	assert.True(t, outcome.Valid)
	assert.GreaterOrEqual(t, outcome.OverallConfidence, 40)
}

func TestParseTextDoesNotGate(t *testing.T) {
	svc := newTestService(nil, &fakeRepository{}, nil, nil)

	outcome := svc.ParseText("no numbers here at all")
	assert.False(t, outcome.Valid)
	assert.Nil(t, outcome.Parsed.Amount)
	assert.NotEmpty(t, outcome.Parsed.Currency)
}
