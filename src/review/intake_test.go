package review

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finbook/backend/src/models"
)

func candidate(amount string, txType models.TransactionType) models.CandidateTransaction {
	return models.CandidateTransaction{
		Amount:          decimal.RequireFromString(amount),
		Description:     "Coffee shop",
		TransactionDate: "2024-01-15",
		TransactionType: txType,
		BankType:        "millennium",
		ConfidenceScore: 0.92,
		RawText:         "15-01 COFFEE SHOP 3,50",
	}
}

func TestIntake_PreservesCardinalityAndOrder(t *testing.T) {
	candidates := []models.CandidateTransaction{
		candidate("3.50", models.TypeExpense),
		candidate("1200.00", models.TypeIncome),
		candidate("99.99", models.TypeDebt),
	}

	items := Intake(candidates)

	require.Len(t, items, len(candidates))
	for i, item := range items {
		assert.True(t, item.Amount.Equal(candidates[i].Amount), "amount preserved at %d", i)
		assert.Equal(t, candidates[i].TransactionDate, item.TransactionDate)
		assert.True(t, item.IsValid, "every item starts included")
		assert.Nil(t, item.CategoryID, "category starts unset")
	}
	assert.Equal(t, "txn-0", items[0].TransactionID)
	assert.Equal(t, "txn-2", items[2].TransactionID)
}

func TestIntake_EmptyInput(t *testing.T) {
	items := Intake(nil)
	assert.Empty(t, items)
}

func TestCommitTypeFor_NarrowsDebtToExpense(t *testing.T) {
	assert.Equal(t, models.CommitIncome, CommitTypeFor(models.TypeIncome))
	assert.Equal(t, models.CommitExpense, CommitTypeFor(models.TypeExpense))
	assert.Equal(t, models.CommitExpense, CommitTypeFor(models.TypeDebt))
}

func TestIntake_TagsDebtDescriptions(t *testing.T) {
	candidates := []models.CandidateTransaction{
		candidate("50.00", models.TypeDebt),
		candidate("50.00", models.TypeExpense),
	}

	items := Intake(candidates)

	assert.Equal(t, models.CommitExpense, items[0].TransactionType)
	assert.Equal(t, "Debt payment: Coffee shop", items[0].Description)
	assert.Equal(t, "Coffee shop", items[1].Description, "non-debt descriptions are untouched")
}
