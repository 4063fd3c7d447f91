package services

import (
	"context"
	"time"

	"github.com/username/finbook/backend/src/models"
	"github.com/username/finbook/backend/src/review"
)

// RecordWriter creates income and expense records in the finance API.
// Implemented by clients.FinanceClient; stubbed in tests.
type RecordWriter interface {
	CreateIncome(ctx context.Context, authToken string, rec models.RecordPayload) error
	CreateExpense(ctx context.Context, authToken string, rec models.RecordPayload) error
}

// RunRecorder persists submission history. Implemented on the sqlite
// import_runs table.
type RunRecorder interface {
	RecordRun(run *ItemizedRun) error
}

// ItemFailure is one transaction whose create-call failed after the
// gates passed. Failures are data, not errors; they never abort the
// batch.
type ItemFailure struct {
	TransactionID string `json:"transaction_id"`
	Description   string `json:"description"`
	Message       string `json:"message"`
}

// SubmissionReport is the consolidated outcome of one batch submission.
type SubmissionReport struct {
	IncomeCreated  int           `json:"income_created"`
	ExpenseCreated int           `json:"expense_created"`
	Failures       []ItemFailure `json:"failures,omitempty"`
}

// FullSuccess reports whether every attempted create-call succeeded.
func (r *SubmissionReport) FullSuccess() bool {
	return len(r.Failures) == 0
}

// ItemizedRun carries a finished submission to the recorder.
type ItemizedRun struct {
	UserID    int64
	SessionID string
	Bank      string
	StartedAt time.Time
	Report    *SubmissionReport
}

// ImportService is the batch submission orchestrator: it gates the
// working set, fans out the create-calls, and aggregates the outcome.
type ImportService interface {
	Submit(ctx context.Context, authToken string, session *review.Session) (*SubmissionReport, error)
}
