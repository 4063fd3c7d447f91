package review

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/username/finbook/backend/src/models"
)

func editable(opts func(*models.EditableTransaction)) models.EditableTransaction {
	categoryID := int64(7)
	t := models.EditableTransaction{
		TransactionID:   "txn-0",
		Amount:          decimal.RequireFromString("42.50"),
		Description:     "Groceries",
		TransactionDate: "2024-01-15",
		TransactionType: models.CommitExpense,
		CategoryID:      &categoryID,
		IsValid:         true,
	}
	if opts != nil {
		opts(&t)
	}
	return t
}

func TestViolations_CommittableItemHasNone(t *testing.T) {
	assert.Empty(t, Violations(editable(nil)))
	assert.True(t, IsCommittable(editable(nil)))
}

func TestViolations_CollectsEveryBrokenRule(t *testing.T) {
	broken := editable(func(tx *models.EditableTransaction) {
		tx.Amount = decimal.Zero
		tx.TransactionDate = ""
		tx.Description = "   "
		tx.CategoryID = nil
	})

	reasons := Violations(broken)

	assert.Equal(t, []string{
		"amount must be greater than 0",
		"transaction date is required",
		"description is required",
		"category must be assigned",
	}, reasons)
}

func TestViolations_NegativeAmountRejected(t *testing.T) {
	tx := editable(func(tx *models.EditableTransaction) {
		tx.Amount = decimal.RequireFromString("-5.00")
	})
	assert.Contains(t, Violations(tx), "amount must be greater than 0")
}

func TestViolations_ExcludedItemsAreNeverValidated(t *testing.T) {
	excluded := editable(func(tx *models.EditableTransaction) {
		tx.IsValid = false
		tx.Amount = decimal.Zero
		tx.Description = ""
	})

	assert.Nil(t, Violations(excluded))
	assert.False(t, IsCommittable(excluded))
	assert.False(t, MissingRequiredFields(excluded))
	assert.False(t, MissingCategory(excluded))
}

func TestViolations_IsPure(t *testing.T) {
	tx := editable(func(tx *models.EditableTransaction) {
		tx.CategoryID = nil
	})

	first := Violations(tx)
	second := Violations(tx)

	assert.Equal(t, first, second, "re-evaluation of an unchanged item yields identical results")
}

func TestMissingCategory_RequiresStructuralCompleteness(t *testing.T) {
	// Structurally incomplete items are counted by the first gate only.
	incomplete := editable(func(tx *models.EditableTransaction) {
		tx.Amount = decimal.Zero
		tx.CategoryID = nil
	})
	assert.True(t, MissingRequiredFields(incomplete))
	assert.False(t, MissingCategory(incomplete))

	uncategorized := editable(func(tx *models.EditableTransaction) {
		tx.CategoryID = nil
	})
	assert.False(t, MissingRequiredFields(uncategorized))
	assert.True(t, MissingCategory(uncategorized))
}

func TestCommittable_FiltersAndPreservesOrder(t *testing.T) {
	items := []models.EditableTransaction{
		editable(func(tx *models.EditableTransaction) { tx.TransactionID = "txn-0" }),
		editable(func(tx *models.EditableTransaction) { tx.TransactionID = "txn-1"; tx.IsValid = false }),
		editable(func(tx *models.EditableTransaction) { tx.TransactionID = "txn-2"; tx.CategoryID = nil }),
		editable(func(tx *models.EditableTransaction) { tx.TransactionID = "txn-3" }),
	}

	committable := Committable(items)

	assert.Len(t, committable, 2)
	assert.Equal(t, "txn-0", committable[0].TransactionID)
	assert.Equal(t, "txn-3", committable[1].TransactionID)
	assert.Equal(t, 1, CountExcluded(items))
}
