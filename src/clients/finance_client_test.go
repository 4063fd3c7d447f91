package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/finbook/backend/src/models"
)

func TestFinanceClient_CreateExpenseSendsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	var gotPayload models.RecordPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewFinanceClient(server.URL, 5*time.Second, nil)
	err := client.CreateExpense(context.Background(), "tok-123", models.RecordPayload{
		Amount:      decimal.RequireFromString("42.50"),
		Description: "Groceries",
		Date:        "2024-01-15",
		CategoryID:  7,
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/expenses", gotPath)
	assert.Equal(t, "Groceries", gotPayload.Description)
	assert.Equal(t, int64(7), gotPayload.CategoryID)
}

func TestFinanceClient_ListCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/categories", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Category{
			{ID: 1, Name: "Food", Type: "expense"},
			{ID: 2, Name: "Salary", Type: "income"},
		})
	}))
	defer server.Close()

	client := NewFinanceClient(server.URL, 5*time.Second, nil)
	categories, err := client.ListCategories(context.Background(), "tok")

	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Food", categories[0].Name)
}

func TestFinanceClient_UnauthorizedWithoutRefreshIsTerminal(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewFinanceClient(server.URL, 5*time.Second, nil)
	err := client.CreateIncome(context.Background(), "stale", models.RecordPayload{})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retry without a refresh hook")
}

func TestFinanceClient_RetriesOnceAfterRefresh(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	refresh := func(ctx context.Context, staleToken string) (string, error) {
		assert.Equal(t, "stale", staleToken)
		return "fresh", nil
	}

	client := NewFinanceClient(server.URL, 5*time.Second, refresh)
	err := client.CreateIncome(context.Background(), "stale", models.RecordPayload{})

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFinanceClient_SurfacesBackendErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "amount must be positive"})
	}))
	defer server.Close()

	client := NewFinanceClient(server.URL, 5*time.Second, nil)
	err := client.CreateExpense(context.Background(), "tok", models.RecordPayload{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "amount must be positive")
}
