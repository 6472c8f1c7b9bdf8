package service

import (
	"time"

	"mymoney/internal/models"

	"github.com/google/uuid"
)

// NormalizeEntries converts candidate entries into transactions owned
// by the uploading user. It is pure and total: garbage categories are
// replaced with the default, never rejected, so record count and order
// are preserved exactly.
//
// Receipt mode forces every entry to an expense before category
// normalization. Unparseable or missing dates fall back to the current
// time, matching manual entry behavior.
func NormalizeEntries(entries []Entry, userID uuid.UUID, mode models.DocumentMode) []*models.Transaction {
	now := time.Now()

	transactions := make([]*models.Transaction, len(entries))
	for i, entry := range entries {
		txType := models.TransactionType(entry.Type)
		if mode == models.DocumentModeReceipt || (txType != models.TransactionTypeIncome && txType != models.TransactionTypeExpense) {
			txType = models.TransactionTypeExpense
		}

		category := entry.Category
		if !models.IsValidCategory(category) {
			category = models.DefaultCategory
		}

		date := now
		if entry.Date != "" {
			if parsed, err := time.Parse("2006-01-02", entry.Date); err == nil {
				date = parsed
			}
		}

		transactions[i] = &models.Transaction{
			ID:          uuid.New(),
			UserID:      userID,
			Type:        txType,
			Category:    category,
			Amount:      entry.Amount,
			Description: sanitizeUTF8(entry.Description),
			Date:        date,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return transactions
}
