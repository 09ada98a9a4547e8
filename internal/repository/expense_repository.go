package repository

import (
	"context"

	"github.com/workpulse/receipt-extraction-service/internal/domain"
)

// ExpenseRepository defines the interface for expense receipt data operations
type ExpenseRepository interface {
	// CRUD operations
	CreateExpense(ctx context.Context, expense *domain.ExpenseReceipt) (*domain.ExpenseReceipt, error)
	GetExpenseByID(ctx context.Context, expenseID string) (*domain.ExpenseReceipt, error)
	DeleteExpense(ctx context.Context, expenseID string) error

	// Query operations
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) (*domain.PaginatedExpenses, error)

	// Dashboard operations
	GetExpenseSummary(ctx context.Context, userID string, startDate, endDate *string) (*domain.ExpenseSummary, error)
}
