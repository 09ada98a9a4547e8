package repository

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpulse/receipt-extraction-service/internal/domain"
)

// PostgresExpenseRepository implements ExpenseRepository using PostgreSQL
type PostgresExpenseRepository struct {
	db *pgxpool.Pool
}

// NewPostgresExpenseRepository creates a new PostgreSQL expense repository
func NewPostgresExpenseRepository(db *pgxpool.Pool) *PostgresExpenseRepository {
	return &PostgresExpenseRepository{
		db: db,
	}
}

// CreateExpense saves a new expense receipt to the database
func (r *PostgresExpenseRepository) CreateExpense(ctx context.Context, expense *domain.ExpenseReceipt) (*domain.ExpenseReceipt, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expense_receipts
			(user_id, vendor, date, amount, currency, reported_amount,
			 payment_method, confidence, ocr_confidence, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, expense.UserID, expense.Vendor, expense.Date, expense.Amount, expense.Currency,
		expense.ReportedAmount, expense.PaymentMethod, expense.Confidence,
		expense.OCRConfidence, expense.ImageURL).Scan(
		&expense.ID, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expense receipt: %w", err)
	}

	return expense, nil
}

// GetExpenseByID retrieves an expense receipt by its ID
func (r *PostgresExpenseRepository) GetExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseReceipt, error) {
	var expense domain.ExpenseReceipt
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, vendor, date, amount, currency, reported_amount,
		       payment_method, confidence, ocr_confidence, image_url,
		       created_at, updated_at
		FROM expense_receipts
		WHERE id = $1
	`, expenseID).Scan(
		&expense.ID, &expense.UserID, &expense.Vendor, &expense.Date,
		&expense.Amount, &expense.Currency, &expense.ReportedAmount,
		&expense.PaymentMethod, &expense.Confidence, &expense.OCRConfidence,
		&expense.ImageURL, &expense.CreatedAt, &expense.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("expense receipt not found: %s", expenseID)
		}
		return nil, fmt.Errorf("failed to get expense receipt: %w", err)
	}

	return &expense, nil
}

// DeleteExpense deletes an expense receipt by ID
func (r *PostgresExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expense_receipts WHERE id = $1`, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense receipt not found: %s", expenseID)
	}
	return nil
}

// ListExpenses retrieves a paginated list of expense receipts
func (r *PostgresExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) (*domain.PaginatedExpenses, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Vendor != "" {
		conditions = append(conditions, fmt.Sprintf("vendor ILIKE $%d", argIdx))
		args = append(args, "%"+filter.Vendor+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	// Count total items
	var totalItems int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM expense_receipts WHERE %s", where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalItems); err != nil {
		return nil, fmt.Errorf("failed to count expense receipts: %w", err)
	}

	// Apply pagination defaults
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`
		SELECT id, user_id, vendor, date, amount, currency, reported_amount,
		       payment_method, confidence, ocr_confidence, image_url,
		       created_at, updated_at
		FROM expense_receipts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense receipts: %w", err)
	}
	defer rows.Close()

	expenses := []domain.ExpenseReceipt{}
	for rows.Next() {
		var expense domain.ExpenseReceipt
		if err := rows.Scan(
			&expense.ID, &expense.UserID, &expense.Vendor, &expense.Date,
			&expense.Amount, &expense.Currency, &expense.ReportedAmount,
			&expense.PaymentMethod, &expense.Confidence, &expense.OCRConfidence,
			&expense.ImageURL, &expense.CreatedAt, &expense.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense receipt: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense receipts: %w", err)
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))

	return &domain.PaginatedExpenses{
		Data: expenses,
		Pagination: domain.Pagination{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: page,
			Limit:       limit,
		},
	}, nil
}

// GetExpenseSummary retrieves aggregate expense data for the dashboard
func (r *PostgresExpenseRepository) GetExpenseSummary(ctx context.Context, userID string, startDate, endDate *string) (*domain.ExpenseSummary, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argIdx := 2

	if startDate != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, *startDate)
		argIdx++
	}
	if endDate != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, *endDate)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	summary := &domain.ExpenseSummary{}
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(reported_amount), 0),
		       COUNT(*),
		       COALESCE(AVG(reported_amount), 0)
		FROM expense_receipts
		WHERE %s
	`, where)
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&summary.TotalSpend, &summary.ReceiptCount, &summary.AverageSpend,
	); err != nil {
		return nil, fmt.Errorf("failed to get expense summary: %w", err)
	}

	vendorQuery := fmt.Sprintf(`
		SELECT vendor, SUM(reported_amount) AS amount, COUNT(*)
		FROM expense_receipts
		WHERE %s AND vendor <> ''
		GROUP BY vendor
		ORDER BY amount DESC
		LIMIT 5
	`, where)
	rows, err := r.db.Query(ctx, vendorQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top vendors: %w", err)
	}
	defer rows.Close()

	summary.TopVendors = []domain.VendorSummary{}
	for rows.Next() {
		var vendor domain.VendorSummary
		if err := rows.Scan(&vendor.Vendor, &vendor.Amount, &vendor.Count); err != nil {
			return nil, fmt.Errorf("failed to scan vendor summary: %w", err)
		}
		if summary.TotalSpend > 0 {
			vendor.Percentage = math.Round(vendor.Amount/summary.TotalSpend*10000) / 100
		}
		summary.TopVendors = append(summary.TopVendors, vendor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top vendors: %w", err)
	}

	return summary, nil
}
