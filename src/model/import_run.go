package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ImportRun is one recorded submission of a reviewed statement: how many
// records were created per type and what, if anything, failed. Rows are
// append-only; the importer never updates or deletes history.
type ImportRun struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	SessionID      string    `json:"session_id"`
	Bank           string    `json:"bank,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	IncomeCreated  int       `json:"income_created"`
	ExpenseCreated int       `json:"expense_created"`
	FailureCount   int       `json:"failure_count"`
	Failures       []string  `json:"failures,omitempty"`
	Status         string    `json:"status"` // "success" or "partial"
}

// Insert appends the run to the import_runs table. Failures are stored
// as a JSON array in a single column.
func (r *ImportRun) Insert(db *sql.DB) error {
	failuresJSON, err := json.Marshal(r.Failures)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO import_runs (id, user_id, session_id, bank, started_at, finished_at,
		income_created, expense_created, failure_count, failures, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(r.ID, r.UserID, r.SessionID, r.Bank, r.StartedAt, r.FinishedAt,
		r.IncomeCreated, r.ExpenseCreated, r.FailureCount, string(failuresJSON), r.Status)
	return err
}

// ListImportRunsByUser returns the user's submission history, most
// recent first.
func ListImportRunsByUser(db *sql.DB, userID int64) ([]ImportRun, error) {
	rows, err := db.Query(`
		SELECT id, user_id, session_id, bank, started_at, finished_at,
			income_created, expense_created, failure_count, failures, status
		FROM import_runs
		WHERE user_id = ?
		ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var run ImportRun
		var failuresJSON sql.NullString
		if err := rows.Scan(&run.ID, &run.UserID, &run.SessionID, &run.Bank,
			&run.StartedAt, &run.FinishedAt, &run.IncomeCreated, &run.ExpenseCreated,
			&run.FailureCount, &failuresJSON, &run.Status); err != nil {
			return nil, err
		}
		if failuresJSON.Valid && failuresJSON.String != "" {
			if err := json.Unmarshal([]byte(failuresJSON.String), &run.Failures); err != nil {
				return nil, err
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
