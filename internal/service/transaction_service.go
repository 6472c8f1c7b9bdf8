package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mymoney/internal/dto"
	"mymoney/internal/models"
	"mymoney/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidCategory     = errors.New("invalid category")
)

// TransactionStore is the persistence dependency of TransactionService.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, filter repository.TransactionFilter, limit, offset int) ([]*models.Transaction, error)
	Count(ctx context.Context, filter repository.TransactionFilter) (int, error)
	TotalsByType(ctx context.Context, filter repository.TransactionFilter) (*repository.TypeTotals, error)
	TotalsByCategory(ctx context.Context, filter repository.TransactionFilter, txType models.TransactionType) ([]repository.CategoryTotal, error)
}

type TransactionService struct {
	txRepo TransactionStore
	logger *zap.Logger
}

func NewTransactionService(txRepo TransactionStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo: txRepo,
		logger: logger,
	}
}

// List returns one page of the user's transactions, newest first,
// together with type-wise totals for the same filter window.
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, start, end *time.Time, page, limit int) (*dto.TransactionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := repository.TransactionFilter{UserID: userID, Start: start, End: end}

	total, err := s.txRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	transactions, err := s.txRepo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	totals, err := s.txRepo.TotalsByType(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TransactionResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = toTransactionResponse(tx)
	}

	totalPages := (total + limit - 1) / limit

	return &dto.TransactionListResponse{
		Data:        responses,
		Page:        page,
		TotalPages:  totalPages,
		TotalAmount: toTypeTotals(totals),
	}, nil
}

func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if !models.IsValidCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	now := time.Now()
	date := now
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		date = parsed
	}

	tx := &models.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        models.TransactionType(req.Type),
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Get(ctx context.Context, id, userID uuid.UUID) (*dto.TransactionResponse, error) {
	tx, err := s.txRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Update(ctx context.Context, id, userID uuid.UUID, req *dto.UpdateTransactionRequest) (*dto.TransactionResponse, error) {
	tx, err := s.txRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, ErrTransactionNotFound
	}

	if req.Type != nil {
		tx.Type = models.TransactionType(*req.Type)
	}
	if req.Category != nil {
		if !models.IsValidCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		tx.Category = *req.Category
	}
	if req.Amount != nil {
		tx.Amount = *req.Amount
	}
	if req.Description != nil {
		tx.Description = *req.Description
	}
	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		tx.Date = parsed
	}
	tx.UpdatedAt = time.Now()

	if err := s.txRepo.Update(ctx, tx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	resp := toTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.txRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	return nil
}

// Analytics aggregates one type's transactions by category over a date
// window. Sums are absolute values; each category's share of the type
// total is reported as a percentage, largest first.
func (s *TransactionService) Analytics(ctx context.Context, userID uuid.UUID, txType models.TransactionType, start, end time.Time) (*dto.AnalyticsResponse, error) {
	filter := repository.TransactionFilter{UserID: userID, Start: &start, End: &end}

	totals, err := s.txRepo.TotalsByType(ctx, filter)
	if err != nil {
		return nil, err
	}

	categoryTotals, err := s.txRepo.TotalsByCategory(ctx, filter, txType)
	if err != nil {
		return nil, err
	}

	var absoluteTotal float64
	for _, ct := range categoryTotals {
		absoluteTotal += ct.TotalAmount
	}

	analytics := make([]dto.CategoryAnalytics, len(categoryTotals))
	for i, ct := range categoryTotals {
		percentage := "0.00"
		if absoluteTotal > 0 {
			percentage = fmt.Sprintf("%.2f", ct.TotalAmount/absoluteTotal*100)
		}
		analytics[i] = dto.CategoryAnalytics{
			Category:    ct.Category,
			TotalAmount: ct.TotalAmount,
			Percentage:  percentage,
		}
	}

	sort.Slice(analytics, func(i, j int) bool {
		return analytics[i].TotalAmount > analytics[j].TotalAmount
	})

	return &dto.AnalyticsResponse{
		TotalAmount: toTypeTotals(totals),
		Analytics:   analytics,
	}, nil
}

func toTransactionResponse(tx *models.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:          tx.ID.String(),
		Type:        string(tx.Type),
		Category:    tx.Category,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.Date.Format("2006-01-02"),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}

func toTypeTotals(totals *repository.TypeTotals) dto.TypeTotals {
	return dto.TypeTotals{
		Income:          totals.Income,
		Expense:         totals.Expense,
		IncomeAbsolute:  totals.IncomeAbsolute,
		ExpenseAbsolute: totals.ExpenseAbsolute,
	}
}
