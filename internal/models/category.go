package models

// DefaultCategory is the universal fallback used whenever a category
// label falls outside the allowed taxonomy.
const DefaultCategory = "Miscellaneous"

// ExpenseCategories is the closed set of labels allowed for expense
// transactions. The prompt builder and the normalizer both read from
// this list; the database schema enforces the same set as a second
// line of defense.
var ExpenseCategories = []string{
	"Housing",
	"Transportation",
	"Food",
	"Personal Care",
	"Healthcare",
	"Insurance",
	"Clothing",
	"Education",
	"Debt",
	"Investment",
	"Entertainment",
	"Miscellaneous",
}

// IncomeCategories is the closed set of labels allowed for income
// transactions.
var IncomeCategories = []string{
	"Salary",
	"Freelance",
	"Investment",
	"Interest",
	"Capital Gains",
	"Awards",
	"Coupons",
	"Grants",
	"Lottery",
	"Rental",
	"Scholarship",
}

// Categories is the full taxonomy, expense labels first.
var Categories = buildCategories()

func buildCategories() []string {
	seen := make(map[string]struct{}, len(ExpenseCategories)+len(IncomeCategories))
	out := make([]string, 0, len(ExpenseCategories)+len(IncomeCategories))
	for _, list := range [][]string{ExpenseCategories, IncomeCategories} {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// IsValidCategory reports whether the label is a taxonomy member.
// Matching is exact and case-sensitive.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
