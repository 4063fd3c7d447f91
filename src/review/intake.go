package review

import (
	"fmt"

	"github.com/username/finbook/backend/src/models"
)

// debtDescriptionPrefix tags records that originated as debt candidates
// so they remain recognizable once recorded as expenses.
const debtDescriptionPrefix = "Debt payment: "

// CommitTypeFor is the single point of truth for narrowing the parser's
// three-way transaction type to the two-way commit type. Debt candidates
// are routed to the expense path.
// TODO: route debt candidates to a dedicated debt-payment endpoint once
// the finance API exposes one; only this function and DescriptionFor
// should need to change.
func CommitTypeFor(t models.TransactionType) models.CommitType {
	switch t {
	case models.TypeIncome:
		return models.CommitIncome
	default:
		// expense, debt and anything unrecognized all commit as expense
		return models.CommitExpense
	}
}

// DescriptionFor returns the description a candidate carries into the
// working set. Debt candidates get a prefix tag so the mapping stays
// visible to the operator.
func DescriptionFor(c models.CandidateTransaction) string {
	if c.TransactionType == models.TypeDebt {
		return debtDescriptionPrefix + c.Description
	}
	return c.Description
}

// Intake builds the editable working set from the parser's candidates.
// The transform is pure and one-time: output length equals input length,
// order is preserved, every item starts included with no category
// assigned. Transaction IDs are index-derived and stable for the life of
// the session.
func Intake(candidates []models.CandidateTransaction) []models.EditableTransaction {
	items := make([]models.EditableTransaction, len(candidates))
	for i, c := range candidates {
		items[i] = models.EditableTransaction{
			TransactionID:   fmt.Sprintf("txn-%d", i),
			Amount:          c.Amount,
			Description:     DescriptionFor(c),
			TransactionDate: c.TransactionDate,
			TransactionType: CommitTypeFor(c.TransactionType),
			CategoryID:      nil,
			IsValid:         true,
		}
	}
	return items
}
