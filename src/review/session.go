package review

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/finbook/backend/src/models"
)

var (
	ErrIndexOutOfRange  = errors.New("transaction index out of range")
	ErrNoPendingDelete  = errors.New("no delete is pending confirmation")
	ErrDeleteInProgress = errors.New("another delete is already pending confirmation")
)

// DeleteScope identifies what a pending delete confirmation applies to.
type DeleteScope string

const (
	DeleteScopeOne      DeleteScope = "one"
	DeleteScopeIncluded DeleteScope = "included"
)

// PendingDelete is the pending-confirmation state of the two-step delete
// flow. A destructive operation is requested first, then separately
// confirmed or cancelled; nothing is removed until confirmation.
type PendingDelete struct {
	Scope DeleteScope `json:"scope"`
	// Index is only meaningful for DeleteScopeOne.
	Index int `json:"index,omitempty"`
}

// FieldPatch is a partial update for one transaction. Nil fields are
// left untouched.
type FieldPatch struct {
	Amount          *decimal.Decimal   `json:"amount,omitempty"`
	Description     *string            `json:"description,omitempty"`
	TransactionDate *string            `json:"transaction_date,omitempty"`
	TransactionType *models.CommitType `json:"transaction_type,omitempty"`
	CategoryID      *int64             `json:"category_id,omitempty"`
}

// Session owns the editable working set for one uploaded statement. All
// mutation goes through its methods; handlers never touch the items
// directly. The mutex serializes mutations, since unlike the original
// single-threaded review screen the HTTP server is concurrent.
type Session struct {
	ID        string
	UserID    int64
	Bank      string
	CreatedAt time.Time

	mu            sync.Mutex
	candidates    []models.CandidateTransaction
	items         []models.EditableTransaction
	pendingDelete *PendingDelete
}

// NewSession intakes the parser candidates and returns a session whose
// working set starts as a 1:1 editable copy of them.
func NewSession(id string, userID int64, bank string, candidates []models.CandidateTransaction) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		Bank:       bank,
		CreatedAt:  time.Now(),
		candidates: candidates,
		items:      Intake(candidates),
	}
}

// Items returns a copy of the current working set.
func (s *Session) Items() []models.EditableTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EditableTransaction, len(s.items))
	copy(out, s.items)
	return out
}

// Candidates returns the read-only parser output the session was built
// from, for operator reference (raw text, confidence).
func (s *Session) Candidates() []models.CandidateTransaction {
	return s.candidates
}

// Len returns the current working set size.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ToggleInclusion flips the inclusion flag of exactly one item. It has
// no validation side effect.
func (s *Session) ToggleInclusion(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.items[index].IsValid = !s.items[index].IsValid
	return nil
}

// SetAllIncluded sets the inclusion flag on every item, overwriting any
// per-item choices.
func (s *Session) SetAllIncluded(included bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].IsValid = included
	}
}

// SetAllType sets the commit type on every item regardless of inclusion.
func (s *Session) SetAllType(t models.CommitType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].TransactionType = t
	}
}

// ClearAllCategories unsets the category on every item regardless of
// inclusion.
func (s *Session) ClearAllCategories() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		s.items[i].CategoryID = nil
	}
}

// UpdateField merges a partial patch into exactly one item.
func (s *Session) UpdateField(index int, patch FieldPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	item := &s.items[index]
	if patch.Amount != nil {
		item.Amount = *patch.Amount
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.TransactionDate != nil {
		item.TransactionDate = *patch.TransactionDate
	}
	if patch.TransactionType != nil {
		item.TransactionType = *patch.TransactionType
	}
	if patch.CategoryID != nil {
		id := *patch.CategoryID
		item.CategoryID = &id
	}
	return nil
}

// RequestDeleteOne stages the removal of a single item. The item is not
// removed until ConfirmDelete; a single request must never delete.
func (s *Session) RequestDeleteOne(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete != nil {
		return ErrDeleteInProgress
	}
	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.pendingDelete = &PendingDelete{Scope: DeleteScopeOne, Index: index}
	return nil
}

// RequestDeleteIncluded stages the removal of every currently included
// item.
func (s *Session) RequestDeleteIncluded() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete != nil {
		return ErrDeleteInProgress
	}
	s.pendingDelete = &PendingDelete{Scope: DeleteScopeIncluded}
	return nil
}

// PendingDeletion returns the staged delete request, or nil when none is
// pending.
func (s *Session) PendingDeletion() *PendingDelete {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return nil
	}
	pd := *s.pendingDelete
	return &pd
}

// ConfirmDelete executes the staged delete and reports how many items
// were removed. Deletions are permanent; the working set only ever
// shrinks.
func (s *Session) ConfirmDelete() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return 0, ErrNoPendingDelete
	}
	pd := s.pendingDelete
	s.pendingDelete = nil

	switch pd.Scope {
	case DeleteScopeOne:
		if pd.Index < 0 || pd.Index >= len(s.items) {
			return 0, ErrIndexOutOfRange
		}
		s.items = append(s.items[:pd.Index], s.items[pd.Index+1:]...)
		return 1, nil
	case DeleteScopeIncluded:
		kept := s.items[:0]
		removed := 0
		for _, item := range s.items {
			if item.IsValid {
				removed++
				continue
			}
			kept = append(kept, item)
		}
		s.items = kept
		return removed, nil
	default:
		return 0, ErrNoPendingDelete
	}
}

// CancelDelete discards the staged delete without mutating the working
// set.
func (s *Session) CancelDelete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDelete == nil {
		return ErrNoPendingDelete
	}
	s.pendingDelete = nil
	return nil
}
