package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpense represents an expense receipt in the API
type TestExpense struct {
	ID             string  `json:"id,omitempty"`
	Vendor         string  `json:"vendor"`
	Date           *string `json:"date"`
	Amount         string  `json:"amount"`
	Currency       string  `json:"currency"`
	ReportedAmount string  `json:"reportedAmount"`
	PaymentMethod  string  `json:"paymentMethod"`
	Confidence     int     `json:"confidence"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
}

// TestPagination represents pagination data in API responses
type TestPagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// TestExpenseListResponse represents the response from GET /receipts
type TestExpenseListResponse struct {
	Data       []TestExpense  `json:"data"`
	Pagination TestPagination `json:"pagination"`
}

// TestParsedReceipt represents the response from POST /receipts/parse
type TestParsedReceipt struct {
	Amount            *float64 `json:"amount"`
	Currency          string   `json:"currency"`
	Date              *string  `json:"date"`
	VendorName        string   `json:"vendorName"`
	PaymentMethod     string   `json:"paymentMethod"`
	OverallConfidence int      `json:"overallConfidence"`
	IsValid           bool     `json:"isValid"`
}

// TestExpenseAPI tests the receipt/expense API endpoints against a running
// server. Requires API_BASE_URL (default http://localhost:8080/v1) and a
// reachable database.
func TestExpenseAPI(t *testing.T) {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1"
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	var accessToken string
	var testExpenseID string

	// 1. Register a throwaway user and capture tokens
	t.Run("Register", func(t *testing.T) {
		registerInput := map[string]interface{}{
			"email":    fmt.Sprintf("it-%d@example.com", time.Now().UnixNano()),
			"password": "integration-pass",
			"name":     "Integration Tester",
		}

		requestBody, err := json.Marshal(registerInput)
		require.NoError(t, err, "Failed to marshal register input")

		url := fmt.Sprintf("%s/auth/register", baseURL)
		resp, err := client.Post(url, "application/json", bytes.NewBuffer(requestBody))
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode, "Expected status code 201")

		var authResponse map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&authResponse)
		require.NoError(t, err, "Failed to decode response body")

		require.NotEmpty(t, authResponse["accessToken"], "accessToken should not be empty")
		accessToken = authResponse["accessToken"].(string)
	})

	if accessToken == "" {
		t.Log("No access token available, skipping remaining tests")
		return
	}

	authorize := func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	// 2. Parse raw receipt text without persistence
	t.Run("ParseReceiptText", func(t *testing.T) {
		parseInput := map[string]interface{}{
			"text": "Joe's Coffee Shop\n03/15/2024\nTOTAL: $45.99\nVISA ****4242",
		}

		requestBody, err := json.Marshal(parseInput)
		require.NoError(t, err, "Failed to marshal parse input")

		url := fmt.Sprintf("%s/receipts/parse", baseURL)
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(requestBody))
		require.NoError(t, err, "Failed to create request")
		req.Header.Set("Content-Type", "application/json")
		authorize(req)

		resp, err := client.Do(req)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var parsed TestParsedReceipt
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		require.NoError(t, err, "Failed to decode response body")

		require.NotNil(t, parsed.Amount, "Amount should be extracted")
		assert.Equal(t, 45.99, *parsed.Amount, "Amount should match the TOTAL line")
		assert.Equal(t, "USD", parsed.Currency, "Currency should default to USD")
		assert.Equal(t, "Joe's Coffee Shop", parsed.VendorName, "Vendor should be the header line")
		assert.Equal(t, "Visa", parsed.PaymentMethod, "Payment method should be Visa")
		assert.True(t, parsed.IsValid, "Extraction should be valid")
	})

	// 3. Scan a receipt image end to end
	t.Run("ScanReceipt", func(t *testing.T) {
		if os.Getenv("OCR_SERVICE_URL") == "" {
			t.Skip("Skipping ScanReceipt test as OCR_SERVICE_URL is not configured")
		}

		imagePath := "../../testdata/sample_receipt.png"
		if _, err := os.Stat(imagePath); os.IsNotExist(err) {
			t.Skip("Test image not found, skipping scan receipt test")
			return
		}

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		fileWriter, err := writer.CreateFormFile("receiptImage", filepath.Base(imagePath))
		require.NoError(t, err, "Failed to create form file")

		file, err := os.Open(imagePath)
		require.NoError(t, err, "Failed to open test image")
		defer file.Close()

		_, err = io.Copy(fileWriter, file)
		require.NoError(t, err, "Failed to copy file to form")

		err = writer.Close()
		require.NoError(t, err, "Failed to close multipart writer")

		url := fmt.Sprintf("%s/receipts/scan", baseURL)
		req, err := http.NewRequest(http.MethodPost, url, &buf)
		require.NoError(t, err, "Failed to create request")
		req.Header.Set("Content-Type", writer.FormDataContentType())
		authorize(req)

		resp, err := client.Do(req)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		// 422 is acceptable when the sample image yields unusable text
		if resp.StatusCode == http.StatusCreated {
			var scanned map[string]interface{}
			err = json.NewDecoder(resp.Body).Decode(&scanned)
			require.NoError(t, err, "Failed to decode response body")

			assert.NotEmpty(t, scanned["id"], "Expense ID should not be empty")
			testExpenseID = scanned["id"].(string)
			t.Logf("Created expense with ID: %s", testExpenseID)
		} else if resp.StatusCode == http.StatusUnprocessableEntity {
			t.Log("Receipt image could not be processed (status 422)")
		} else {
			t.Errorf("Unexpected status code: %d", resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			t.Logf("Response body: %s", body)
		}
	})

	// 4. List expenses
	t.Run("GetExpenses", func(t *testing.T) {
		url := fmt.Sprintf("%s/receipts", baseURL)
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err, "Failed to create request")
		authorize(req)

		resp, err := client.Do(req)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var response TestExpenseListResponse
		err = json.NewDecoder(resp.Body).Decode(&response)
		require.NoError(t, err, "Failed to decode response body")

		assert.GreaterOrEqual(t, response.Pagination.CurrentPage, 1, "Current page should be at least 1")
		assert.GreaterOrEqual(t, response.Pagination.Limit, 1, "Limit should be at least 1")
	})

	// 5. Expense summary
	t.Run("GetExpenseSummary", func(t *testing.T) {
		url := fmt.Sprintf("%s/receipts/summary", baseURL)
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err, "Failed to create request")
		authorize(req)

		resp, err := client.Do(req)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var summary map[string]interface{}
		err = json.NewDecoder(resp.Body).Decode(&summary)
		require.NoError(t, err, "Failed to decode response body")

		assert.Contains(t, summary, "totalSpend", "Summary should contain totalSpend")
		assert.Contains(t, summary, "expenseCount", "Summary should contain expenseCount")
		assert.Contains(t, summary, "averageSpend", "Summary should contain averageSpend")
		assert.Contains(t, summary, "topVendors", "Summary should contain topVendors")
	})

	// 6. Requests without a token are rejected
	t.Run("UnauthorizedRejected", func(t *testing.T) {
		url := fmt.Sprintf("%s/receipts", baseURL)
		resp, err := client.Get(url)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "Expected status code 401")
	})

	// Remaining tests need a stored expense from the scan step
	if testExpenseID == "" {
		t.Log("No test expense ID available, skipping remaining tests")
		return
	}

	// 7. Get the expense by ID
	t.Run("GetExpenseByID", func(t *testing.T) {
		url := fmt.Sprintf("%s/receipts/%s", baseURL, testExpenseID)
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err, "Failed to create request")
		authorize(req)

		resp, err := client.Do(req)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code 200")

		var expense TestExpense
		err = json.NewDecoder(resp.Body).Decode(&expense)
		require.NoError(t, err, "Failed to decode response body")

		assert.Equal(t, testExpenseID, expense.ID, "Expense ID doesn't match")
		assert.NotEmpty(t, expense.Amount, "Amount should not be empty")
		assert.NotEmpty(t, expense.Currency, "Currency should not be empty")
	})

	// 8. Delete the expense
	t.Run("DeleteExpense", func(t *testing.T) {
		url := fmt.Sprintf("%s/receipts/%s", baseURL, testExpenseID)
		req, err := http.NewRequest(http.MethodDelete, url, nil)
		require.NoError(t, err, "Failed to create request")
		authorize(req)

		resp, err := client.Do(req)
		require.NoError(t, err, "Failed to execute request")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode, "Expected status code 204")

		// Fetching the deleted expense should return 404
		getReq, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err, "Failed to create request")
		authorize(getReq)

		getResp, err := client.Do(getReq)
		require.NoError(t, err, "Failed to execute request")
		defer getResp.Body.Close()

		assert.Equal(t, http.StatusNotFound, getResp.StatusCode, "Expected status code 404 after deletion")
	})
}
