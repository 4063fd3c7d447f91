package review

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/finbook/backend/src/models"
)

// Violations evaluates the structural rules for one included transaction
// and returns the human-readable reasons it cannot be committed, in rule
// order. An excluded transaction (IsValid == false) is never validated
// and always yields nil. An empty result for an included transaction
// means it is committable.
//
// The function is pure: no state, no side effects, safe to re-evaluate
// on every read.
func Violations(t models.EditableTransaction) []string {
	if !t.IsValid {
		return nil
	}

	var reasons []string
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		reasons = append(reasons, "amount must be greater than 0")
	}
	if t.TransactionDate == "" {
		reasons = append(reasons, "transaction date is required")
	}
	if strings.TrimSpace(t.Description) == "" {
		reasons = append(reasons, "description is required")
	}
	if t.CategoryID == nil {
		reasons = append(reasons, "category must be assigned")
	}
	return reasons
}

// MissingRequiredFields reports whether an included transaction is
// structurally incomplete: a zero or negative amount, an empty date, or
// a blank description. Category assignment is a separate, stricter gate.
func MissingRequiredFields(t models.EditableTransaction) bool {
	if !t.IsValid {
		return false
	}
	return t.Amount.LessThanOrEqual(decimal.Zero) ||
		t.TransactionDate == "" ||
		strings.TrimSpace(t.Description) == ""
}

// MissingCategory reports whether an included, structurally complete
// transaction still lacks a category.
func MissingCategory(t models.EditableTransaction) bool {
	if !t.IsValid || MissingRequiredFields(t) {
		return false
	}
	return t.CategoryID == nil
}

// IsCommittable reports whether a transaction is included and passes
// every validation rule.
func IsCommittable(t models.EditableTransaction) bool {
	return t.IsValid && len(Violations(t)) == 0
}

// Committable returns the subset of the working set that would be sent
// on submission, preserving order.
func Committable(items []models.EditableTransaction) []models.EditableTransaction {
	var out []models.EditableTransaction
	for _, t := range items {
		if IsCommittable(t) {
			out = append(out, t)
		}
	}
	return out
}

// CountExcluded returns how many items the operator has excluded.
func CountExcluded(items []models.EditableTransaction) int {
	n := 0
	for _, t := range items {
		if !t.IsValid {
			n++
		}
	}
	return n
}
