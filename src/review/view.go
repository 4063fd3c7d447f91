package review

import (
	"strconv"
	"strings"
	"time"

	"github.com/username/finbook/backend/src/models"
)

// TransactionView is one working-set row as presented to the operator:
// the editable copy, its current violations, and the parser context it
// derives from.
type TransactionView struct {
	models.EditableTransaction
	Violations      []string `json:"violations,omitempty"`
	RawText         string   `json:"raw_text,omitempty"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// SessionView is a full snapshot of a review session.
type SessionView struct {
	SessionID        string            `json:"session_id"`
	Bank             string            `json:"bank,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	Transactions     []TransactionView `json:"transactions"`
	CommittableCount int               `json:"committable_count"`
	ExcludedCount    int               `json:"excluded_count"`
	PendingDelete    *PendingDelete    `json:"pending_delete,omitempty"`
}

// originalIndex recovers the candidate index a working-set item was
// derived from. Transaction IDs are index-derived at intake and stable
// even after sibling deletions.
func originalIndex(transactionID string) int {
	idx, err := strconv.Atoi(strings.TrimPrefix(transactionID, "txn-"))
	if err != nil {
		return -1
	}
	return idx
}

// View builds a snapshot of the session, re-evaluating validation on
// every call rather than caching it.
func (s *Session) View() SessionView {
	items := s.Items()
	view := SessionView{
		SessionID:     s.ID,
		Bank:          s.Bank,
		CreatedAt:     s.CreatedAt,
		Transactions:  make([]TransactionView, len(items)),
		ExcludedCount: CountExcluded(items),
		PendingDelete: s.PendingDeletion(),
	}
	for i, item := range items {
		row := TransactionView{EditableTransaction: item, Violations: Violations(item)}
		if orig := originalIndex(item.TransactionID); orig >= 0 && orig < len(s.candidates) {
			row.RawText = s.candidates[orig].RawText
			row.ConfidenceScore = s.candidates[orig].ConfidenceScore
		}
		view.Transactions[i] = row
		if IsCommittable(item) {
			view.CommittableCount++
		}
	}
	return view
}
