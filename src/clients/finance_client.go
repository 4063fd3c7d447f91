package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/models"
)

var ErrUnauthorized = errors.New("finance API rejected the bearer token")

// RefreshFunc exchanges an expired access token for a fresh one. It is
// optional; when nil a 401 is terminal for the request.
type RefreshFunc func(ctx context.Context, staleToken string) (string, error)

// FinanceClient wraps the main finance API's category, income and
// expense resources. Calls carry the operator's bearer token; on a 401
// the request is retried exactly once after refreshing the token.
type FinanceClient struct {
	baseURL    string
	httpClient *http.Client
	refresh    RefreshFunc
}

func NewFinanceClient(baseURL string, timeout time.Duration, refresh RefreshFunc) *FinanceClient {
	return &FinanceClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		refresh:    refresh,
	}
}

// ListCategories fetches the user's categories. The importer only reads
// them, never creates or modifies one.
func (c *FinanceClient) ListCategories(ctx context.Context, authToken string) ([]models.Category, error) {
	var categories []models.Category
	if err := c.doJSON(ctx, http.MethodGet, "/api/categories", authToken, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateIncome creates one income record.
func (c *FinanceClient) CreateIncome(ctx context.Context, authToken string, rec models.RecordPayload) error {
	return c.doJSON(ctx, http.MethodPost, "/api/incomes", authToken, rec, nil)
}

// CreateExpense creates one expense record.
func (c *FinanceClient) CreateExpense(ctx context.Context, authToken string, rec models.RecordPayload) error {
	return c.doJSON(ctx, http.MethodPost, "/api/expenses", authToken, rec, nil)
}

// doJSON performs one JSON request with bearer auth, retrying a single
// time on 401 when a refresh hook is configured.
func (c *FinanceClient) doJSON(ctx context.Context, method, path, authToken string, body, out interface{}) error {
	resp, err := c.doOnce(ctx, method, path, authToken, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.refresh != nil {
		resp.Body.Close()
		newToken, refreshErr := c.refresh(ctx, authToken)
		if refreshErr != nil {
			return fmt.Errorf("%w: refresh failed: %v", ErrUnauthorized, refreshErr)
		}
		logger.L.Debug("Retrying finance API call with refreshed token", "method", method, "path", path)
		resp, err = c.doOnce(ctx, method, path, newToken, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("finance API returned %d for %s %s: %s",
			resp.StatusCode, method, path, readErrorMessage(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding finance API response for %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *FinanceClient) doOnce(ctx context.Context, method, path, authToken string, body interface{}) (*http.Response, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return nil, fmt.Errorf("encoding request body for %s %s: %w", method, path, err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+authToken)

	return c.httpClient.Do(req)
}
