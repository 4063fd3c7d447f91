package models

import (
	"github.com/shopspring/decimal"
)

// TransactionType classifies a candidate transaction as emitted by the
// statement parser service. Debt is a parser-side type only; it never
// survives intake (see review.CommitTypeFor).
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
	TypeDebt    TransactionType = "debt"
)

// CommitType is the narrower type used when a reviewed transaction is
// committed to the finance API. Only income and expense records can be
// created there.
type CommitType string

const (
	CommitIncome  CommitType = "income"
	CommitExpense CommitType = "expense"
)

// CandidateTransaction is one transaction extracted from a bank statement
// by the parser service. It is read-only input to the review workflow:
// the importer never mutates a candidate, only the editable copy derived
// from it.
type CandidateTransaction struct {
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate string          `json:"transaction_date"` // YYYY-MM-DD, may be empty when the parser could not read it
	TransactionType TransactionType `json:"transaction_type"`
	BankType        string          `json:"bank_type"`
	ConfidenceScore float64         `json:"confidence_score"` // [0,1]
	RawText         string          `json:"raw_text,omitempty"`
}

// EditableTransaction is the operator-editable working copy of a
// candidate. Exactly one per candidate, in candidate order; the index
// into the working set is the only correlation back to the candidate's
// raw text and confidence score.
type EditableTransaction struct {
	TransactionID   string          `json:"transaction_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate string          `json:"transaction_date"`
	TransactionType CommitType      `json:"transaction_type"`
	CategoryID      *int64          `json:"category_id,omitempty"`
	// IsValid is the operator's inclusion flag, not a statement about
	// committability. An included transaction can still fail validation.
	IsValid bool `json:"is_valid"`
}

// Category mirrors the finance API's category resource. Categories are
// never created or modified by the importer.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// ParseOutcome is the parser service's response for one uploaded
// statement: the candidate transactions plus per-run metadata.
type ParseOutcome struct {
	DetectedBank        string                 `json:"detected_bank"`
	TransactionCount    int                    `json:"transaction_count"`
	ConfidenceThreshold float64                `json:"confidence_threshold"`
	Transactions        []CandidateTransaction `json:"transactions"`
}

// RecordPayload is the body sent to the finance API when creating an
// income or expense record from a reviewed transaction.
type RecordPayload struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CategoryID  int64           `json:"category_id"`
}
