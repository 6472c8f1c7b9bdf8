package repository

import (
	"context"
	"time"

	"mymoney/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// TransactionFilter scopes list and aggregate queries to one user and
// an optional date window.
type TransactionFilter struct {
	UserID uuid.UUID
	Start  *time.Time
	End    *time.Time
}

// TypeTotals holds per-type sums for a filter window. Raw sums keep
// the sign as stored; absolute sums are used by analytics.
type TypeTotals struct {
	Income          float64
	Expense         float64
	IncomeAbsolute  float64
	ExpenseAbsolute float64
}

// CategoryTotal is one category's absolute sum within a window.
type CategoryTotal struct {
	Category    string
	TotalAmount float64
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

var transactionColumns = []string{"id", "user_id", "type", "category", "amount", "description", "date", "created_at", "updated_at"}

func (f TransactionFilter) apply(query squirrel.SelectBuilder) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"user_id": f.UserID})
	if f.Start != nil && f.End != nil {
		query = query.Where(squirrel.GtOrEq{"date": *f.Start}).Where(squirrel.LtOrEq{"date": *f.End})
	}
	return query
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		Values(tx.ID, tx.UserID, tx.Type, tx.Category, tx.Amount, tx.Description, tx.Date, tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// CreateBatch inserts all records in a single statement, so the whole
// batch succeeds or fails together.
func (r *TransactionRepository) CreateBatch(ctx context.Context, transactions []*models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	builder := squirrel.Insert("transactions").
		Columns(transactionColumns...).
		PlaceholderFormat(squirrel.Dollar)

	for _, tx := range transactions {
		builder = builder.Values(tx.ID, tx.UserID, tx.Type, tx.Category, tx.Amount, tx.Description, tx.Date, tx.CreatedAt, tx.UpdatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *TransactionRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var tx models.Transaction
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Update("transactions").
		Set("type", tx.Type).
		Set("category", tx.Category).
		Set("amount", tx.Amount).
		Set("description", tx.Description).
		Set("date", tx.Date).
		Set("updated_at", tx.UpdatedAt).
		Where(squirrel.Eq{"id": tx.ID, "user_id": tx.UserID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter, limit, offset int) ([]*models.Transaction, error) {
	query := filter.apply(squirrel.Select(transactionColumns...).From("transactions")).
		OrderBy("date DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &tx.Date, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, &tx)
	}

	return transactions, rows.Err()
}

func (r *TransactionRepository) Count(ctx context.Context, filter TransactionFilter) (int, error) {
	query := filter.apply(squirrel.Select("COUNT(*)").From("transactions")).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// TotalsByType sums amounts per transaction type within the filter
// window, both signed and absolute.
func (r *TransactionRepository) TotalsByType(ctx context.Context, filter TransactionFilter) (*TypeTotals, error) {
	query := filter.apply(
		squirrel.Select("type", "SUM(amount)", "SUM(ABS(amount))").From("transactions"),
	).
		GroupBy("type").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := &TypeTotals{}
	for rows.Next() {
		var txType models.TransactionType
		var total, absolute float64
		if err := rows.Scan(&txType, &total, &absolute); err != nil {
			return nil, err
		}
		switch txType {
		case models.TransactionTypeIncome:
			totals.Income = total
			totals.IncomeAbsolute = absolute
		case models.TransactionTypeExpense:
			totals.Expense = total
			totals.ExpenseAbsolute = absolute
		}
	}

	return totals, rows.Err()
}

// TotalsByCategory sums absolute amounts per category for one
// transaction type within the filter window.
func (r *TransactionRepository) TotalsByCategory(ctx context.Context, filter TransactionFilter, txType models.TransactionType) ([]CategoryTotal, error) {
	query := filter.apply(
		squirrel.Select("category", "SUM(ABS(amount))").From("transactions"),
	).
		Where(squirrel.Eq{"type": txType}).
		GroupBy("category").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalAmount); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}

	return totals, rows.Err()
}
