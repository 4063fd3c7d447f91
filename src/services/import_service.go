package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/model"
	"github.com/username/finbook/backend/src/models"
	"github.com/username/finbook/backend/src/review"
)

var (
	// ErrIncompleteTransactions aborts submission when any included item
	// is missing a required field. Nothing is sent in this case.
	ErrIncompleteTransactions = errors.New("included transactions are missing required fields")
	// ErrMissingCategories aborts submission when any included,
	// structurally complete item has no category assigned.
	ErrMissingCategories = errors.New("included transactions are missing a category")
	// ErrNothingToSubmit is returned when the working set has no
	// committable items at all.
	ErrNothingToSubmit = errors.New("no committable transactions to submit")
)

type importServiceImpl struct {
	writer   RecordWriter
	recorder RunRecorder
}

func NewImportService(writer RecordWriter, recorder RunRecorder) ImportService {
	return &importServiceImpl{
		writer:   writer,
		recorder: recorder,
	}
}

// Submit commits the session's committable transactions to the finance
// API and reports a consolidated outcome.
//
// Two precondition gates run before any network call, in order: first
// structural completeness of every included item, then category
// assignment on every included item. A gate failure aborts the whole
// submission with a count-based error and zero calls issued.
//
// Once the gates pass, one create-call is issued per committable item,
// concurrently, routed by commit type. All calls run to settlement; one
// item's failure never cancels its siblings and successes are never
// rolled back. Per-item failures come back as data in the report, not as
// an error.
func (s *importServiceImpl) Submit(ctx context.Context, authToken string, session *review.Session) (*SubmissionReport, error) {
	items := session.Items()

	incomplete := 0
	for _, item := range items {
		if review.MissingRequiredFields(item) {
			incomplete++
		}
	}
	if incomplete > 0 {
		return nil, fmt.Errorf("%w: %d transaction(s) incomplete", ErrIncompleteTransactions, incomplete)
	}

	uncategorized := 0
	for _, item := range items {
		if review.MissingCategory(item) {
			uncategorized++
		}
	}
	if uncategorized > 0 {
		return nil, fmt.Errorf("%w: %d transaction(s) without a category", ErrMissingCategories, uncategorized)
	}

	committable := review.Committable(items)
	if len(committable) == 0 {
		return nil, ErrNothingToSubmit
	}

	startedAt := time.Now()
	logger.L.Info("Submitting reviewed transactions",
		"sessionID", session.ID, "userID", session.UserID, "count", len(committable))

	// Fan out one create-call per item and wait for every one to settle.
	results := make([]error, len(committable))
	var wg sync.WaitGroup
	for i, tx := range committable {
		wg.Add(1)
		go func(i int, tx models.EditableTransaction) {
			defer wg.Done()
			results[i] = s.createRecord(ctx, authToken, tx)
		}(i, tx)
	}
	wg.Wait()

	report := &SubmissionReport{}
	for i, tx := range committable {
		if err := results[i]; err != nil {
			report.Failures = append(report.Failures, ItemFailure{
				TransactionID: tx.TransactionID,
				Description:   tx.Description,
				Message:       err.Error(),
			})
			continue
		}
		if tx.TransactionType == models.CommitIncome {
			report.IncomeCreated++
		} else {
			report.ExpenseCreated++
		}
	}

	if s.recorder != nil {
		run := &ItemizedRun{
			UserID:    session.UserID,
			SessionID: session.ID,
			Bank:      session.Bank,
			StartedAt: startedAt,
			Report:    report,
		}
		if err := s.recorder.RecordRun(run); err != nil {
			// History is best-effort; the records themselves are already
			// created, so a recording failure must not fail the submission.
			logger.L.Error("Failed to record import run", "sessionID", session.ID, "error", err)
		}
	}

	logger.L.Info("Submission settled",
		"sessionID", session.ID,
		"incomeCreated", report.IncomeCreated,
		"expenseCreated", report.ExpenseCreated,
		"failures", len(report.Failures),
		"duration", time.Since(startedAt))
	return report, nil
}

// createRecord issues the single create-call for one transaction. Any
// error is folded into that item's result; it never propagates further.
func (s *importServiceImpl) createRecord(ctx context.Context, authToken string, tx models.EditableTransaction) error {
	payload := models.RecordPayload{
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        tx.TransactionDate,
		CategoryID:  *tx.CategoryID, // non-nil: the category gate already passed
	}
	if tx.TransactionType == models.CommitIncome {
		return s.writer.CreateIncome(ctx, authToken, payload)
	}
	return s.writer.CreateExpense(ctx, authToken, payload)
}

// sqliteRunRecorder persists runs via the import_runs table.
type sqliteRunRecorder struct {
	db *sql.DB
}

func NewSQLiteRunRecorder(db *sql.DB) RunRecorder {
	return &sqliteRunRecorder{db: db}
}

func (r *sqliteRunRecorder) RecordRun(run *ItemizedRun) error {
	status := "success"
	if !run.Report.FullSuccess() {
		status = "partial"
	}
	failures := make([]string, 0, len(run.Report.Failures))
	for _, f := range run.Report.Failures {
		failures = append(failures, fmt.Sprintf("%s (%s): %s", f.TransactionID, f.Description, f.Message))
	}

	row := &model.ImportRun{
		ID:             uuid.NewString(),
		UserID:         run.UserID,
		SessionID:      run.SessionID,
		Bank:           run.Bank,
		StartedAt:      run.StartedAt,
		FinishedAt:     time.Now(),
		IncomeCreated:  run.Report.IncomeCreated,
		ExpenseCreated: run.Report.ExpenseCreated,
		FailureCount:   len(run.Report.Failures),
		Failures:       failures,
		Status:         status,
	}
	return row.Insert(r.db)
}
