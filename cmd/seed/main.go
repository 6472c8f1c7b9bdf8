package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mymoney/internal/models"
	"mymoney/internal/repository"
	"mymoney/pkg/auth"
	"mymoney/pkg/config"
	"mymoney/pkg/logger"
	"mymoney/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bootstraps the schema and a verified demo user with sample
// transactions, so the API is exercisable without going through the
// signup/email flow first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Creating schema...")
	if _, err := db.Exec(ctx, schema()); err != nil {
		appLogger.Fatal("Failed to create schema", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	if existing, _ := userRepo.GetByEmail(ctx, "demo@mymoney.dev"); existing != nil {
		appLogger.Info("Demo user already present, nothing to do")
		return
	}

	hashed, err := auth.HashPassword("demo-password")
	if err != nil {
		appLogger.Fatal("Failed to hash demo password", zap.Error(err))
	}

	now := time.Now()
	user := &models.User{
		ID:               uuid.New(),
		Name:             "Demo User",
		Email:            "demo@mymoney.dev",
		Password:         hashed,
		EmailVerified:    true,
		VerificationCode: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}

	samples := []struct {
		txType      models.TransactionType
		category    string
		amount      float64
		description string
		daysAgo     int
	}{
		{models.TransactionTypeIncome, "Salary", 4200, "Monthly salary", 20},
		{models.TransactionTypeExpense, "Housing", 1350, "Rent", 18},
		{models.TransactionTypeExpense, "Food", 86.4, "Groceries", 12},
		{models.TransactionTypeExpense, "Transportation", 49.9, "Monthly transit pass", 10},
		{models.TransactionTypeExpense, "Entertainment", 15.99, "Streaming subscription", 7},
		{models.TransactionTypeIncome, "Freelance", 600, "Side project invoice", 4},
		{models.TransactionTypeExpense, "Miscellaneous", 22.5, "Hardware store", 2},
	}

	transactions := make([]*models.Transaction, len(samples))
	for i, s := range samples {
		transactions[i] = &models.Transaction{
			ID:          uuid.New(),
			UserID:      user.ID,
			Type:        s.txType,
			Category:    s.category,
			Amount:      s.amount,
			Description: s.description,
			Date:        now.AddDate(0, 0, -s.daysAgo),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	if err := txRepo.CreateBatch(ctx, transactions); err != nil {
		appLogger.Fatal("Failed to seed transactions", zap.Error(err))
	}

	appLogger.Info("Database seeding completed",
		zap.String("user", user.Email),
		zap.Int("transactions", len(transactions)),
	)
}

// quoteLiteral wraps a string as a SQL literal, doubling any embedded
// single quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// schema creates the tables. The category CHECK mirrors the taxonomy
// enforced by the normalizer as a second line of defense.
func schema() string {
	quoted := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		quoted[i] = quoteLiteral(c)
	}
	categoryList := strings.Join(quoted, ", ")

	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	verification_code INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
	category TEXT NOT NULL DEFAULT 'Miscellaneous' CHECK (category IN (%s)),
	amount DOUBLE PRECISION NOT NULL,
	description TEXT,
	date TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions (user_id, date DESC);
`, categoryList)
}
