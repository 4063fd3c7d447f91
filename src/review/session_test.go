package review

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finbook/backend/src/models"
)

func newTestSession(t *testing.T, n int) *Session {
	t.Helper()
	candidates := make([]models.CandidateTransaction, n)
	for i := range candidates {
		candidates[i] = models.CandidateTransaction{
			Amount:          decimal.NewFromInt(int64(10 + i)),
			Description:     "Item",
			TransactionDate: "2024-01-15",
			TransactionType: models.TypeExpense,
			ConfidenceScore: 0.8,
		}
	}
	return NewSession("session-1", 42, "millennium", candidates)
}

func TestToggleInclusion_FlipsExactlyOneItem(t *testing.T) {
	s := newTestSession(t, 3)

	require.NoError(t, s.ToggleInclusion(1))

	items := s.Items()
	assert.True(t, items[0].IsValid)
	assert.False(t, items[1].IsValid)
	assert.True(t, items[2].IsValid)

	require.NoError(t, s.ToggleInclusion(1))
	assert.True(t, s.Items()[1].IsValid)
}

func TestToggleInclusion_OutOfRange(t *testing.T) {
	s := newTestSession(t, 2)
	assert.ErrorIs(t, s.ToggleInclusion(5), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.ToggleInclusion(-1), ErrIndexOutOfRange)
}

func TestSetAllIncluded_IsIdempotent(t *testing.T) {
	s := newTestSession(t, 4)
	require.NoError(t, s.ToggleInclusion(2))

	s.SetAllIncluded(true)
	after := s.Items()
	s.SetAllIncluded(true)

	assert.Equal(t, after, s.Items(), "a second identical call changes nothing")
	for _, item := range s.Items() {
		assert.True(t, item.IsValid)
	}
}

func TestSetAllIncluded_OverwritesPerItemChoices(t *testing.T) {
	s := newTestSession(t, 3)
	require.NoError(t, s.ToggleInclusion(0))

	s.SetAllIncluded(false)
	for _, item := range s.Items() {
		assert.False(t, item.IsValid)
	}
}

func TestSetAllType_IgnoresInclusionState(t *testing.T) {
	s := newTestSession(t, 3)
	require.NoError(t, s.ToggleInclusion(1)) // exclude one

	s.SetAllType(models.CommitIncome)

	for _, item := range s.Items() {
		assert.Equal(t, models.CommitIncome, item.TransactionType)
	}
}

func TestClearAllCategories(t *testing.T) {
	s := newTestSession(t, 2)
	categoryID := int64(3)
	require.NoError(t, s.UpdateField(0, FieldPatch{CategoryID: &categoryID}))
	require.NoError(t, s.ToggleInclusion(1))

	s.ClearAllCategories()

	for _, item := range s.Items() {
		assert.Nil(t, item.CategoryID)
	}
}

func TestUpdateField_MergesPartialPatch(t *testing.T) {
	s := newTestSession(t, 2)
	amount := decimal.RequireFromString("99.95")
	description := "Refund"
	categoryID := int64(3)

	require.NoError(t, s.UpdateField(0, FieldPatch{
		Amount:      &amount,
		Description: &description,
		CategoryID:  &categoryID,
	}))

	item := s.Items()[0]
	assert.True(t, item.Amount.Equal(amount))
	assert.Equal(t, "Refund", item.Description)
	require.NotNil(t, item.CategoryID)
	assert.Equal(t, int64(3), *item.CategoryID)
	assert.Equal(t, "2024-01-15", item.TransactionDate, "unpatched fields are untouched")

	other := s.Items()[1]
	assert.Nil(t, other.CategoryID, "sibling items are untouched")
}

func TestDeleteOne_RequiresConfirmation(t *testing.T) {
	s := newTestSession(t, 3)

	require.NoError(t, s.RequestDeleteOne(1))
	assert.Equal(t, 3, s.Len(), "requesting alone must never delete")

	pd := s.PendingDeletion()
	require.NotNil(t, pd)
	assert.Equal(t, DeleteScopeOne, pd.Scope)
	assert.Equal(t, 1, pd.Index)

	removed, err := s.ConfirmDelete()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, s.Len())
	assert.Nil(t, s.PendingDeletion())

	// The remaining items keep their identity.
	ids := []string{s.Items()[0].TransactionID, s.Items()[1].TransactionID}
	assert.Equal(t, []string{"txn-0", "txn-2"}, ids)
}

func TestDeleteOne_CancelLeavesSetUntouched(t *testing.T) {
	s := newTestSession(t, 2)

	require.NoError(t, s.RequestDeleteOne(0))
	require.NoError(t, s.CancelDelete())

	assert.Equal(t, 2, s.Len())
	assert.Nil(t, s.PendingDeletion())
}

func TestConfirmDelete_WithoutPendingRequest(t *testing.T) {
	s := newTestSession(t, 2)
	_, err := s.ConfirmDelete()
	assert.ErrorIs(t, err, ErrNoPendingDelete)
	assert.ErrorIs(t, s.CancelDelete(), ErrNoPendingDelete)
}

func TestRequestDelete_RejectsConcurrentRequests(t *testing.T) {
	s := newTestSession(t, 3)
	require.NoError(t, s.RequestDeleteOne(0))
	assert.ErrorIs(t, s.RequestDeleteOne(1), ErrDeleteInProgress)
	assert.ErrorIs(t, s.RequestDeleteIncluded(), ErrDeleteInProgress)
}

func TestDeleteAllIncluded_RemovesOnlyIncludedItems(t *testing.T) {
	s := newTestSession(t, 4)
	require.NoError(t, s.ToggleInclusion(1)) // exclude
	require.NoError(t, s.ToggleInclusion(3)) // exclude

	require.NoError(t, s.RequestDeleteIncluded())
	assert.Equal(t, 4, s.Len())

	removed, err := s.ConfirmDelete()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "txn-1", items[0].TransactionID)
	assert.Equal(t, "txn-3", items[1].TransactionID)
}

func TestWorkingSetSizeIsNonIncreasing(t *testing.T) {
	s := newTestSession(t, 3)
	sizes := []int{s.Len()}

	require.NoError(t, s.ToggleInclusion(0))
	sizes = append(sizes, s.Len())
	s.SetAllType(models.CommitIncome)
	sizes = append(sizes, s.Len())
	require.NoError(t, s.RequestDeleteOne(2))
	sizes = append(sizes, s.Len())
	_, err := s.ConfirmDelete()
	require.NoError(t, err)
	sizes = append(sizes, s.Len())

	for i := 1; i < len(sizes); i++ {
		assert.LessOrEqual(t, sizes[i], sizes[i-1])
	}
}

func TestView_CorrelatesRawTextAfterDeletion(t *testing.T) {
	s := newTestSession(t, 3)
	require.NoError(t, s.RequestDeleteOne(0))
	_, err := s.ConfirmDelete()
	require.NoError(t, err)

	view := s.View()
	require.Len(t, view.Transactions, 2)
	// txn-1 still maps back to candidate 1 even though it now sits at index 0.
	assert.Equal(t, "txn-1", view.Transactions[0].TransactionID)
	assert.Equal(t, 0.8, view.Transactions[0].ConfidenceScore)
}

func TestView_CountsAndViolations(t *testing.T) {
	s := newTestSession(t, 3)
	categoryID := int64(5)
	require.NoError(t, s.UpdateField(0, FieldPatch{CategoryID: &categoryID}))
	require.NoError(t, s.ToggleInclusion(2))

	view := s.View()

	assert.Equal(t, 1, view.CommittableCount, "only the categorized item commits")
	assert.Equal(t, 1, view.ExcludedCount)
	assert.Empty(t, view.Transactions[0].Violations)
	assert.Contains(t, view.Transactions[1].Violations, "category must be assigned")
	assert.Nil(t, view.Transactions[2].Violations, "excluded items are not validated")
}
