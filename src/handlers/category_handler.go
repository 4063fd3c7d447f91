package handlers

import (
	"errors"
	"net/http"

	"github.com/username/finbook/backend/src/clients"
	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/models"
	"github.com/username/finbook/backend/src/utils"
)

// CategoryHandler proxies the finance API's category list so the review
// screen can populate its per-row category selector.
type CategoryHandler struct {
	finance *clients.FinanceClient
}

func NewCategoryHandler(finance *clients.FinanceClient) *CategoryHandler {
	return &CategoryHandler{finance: finance}
}

func (h *CategoryHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	authToken, ok := GetAuthTokenFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication token not found in context", http.StatusUnauthorized)
		return
	}

	categories, err := h.finance.ListCategories(r.Context(), authToken)
	if err != nil {
		if errors.Is(err, clients.ErrUnauthorized) {
			utils.SendJSONError(w, "finance API rejected the token", http.StatusUnauthorized)
			return
		}
		logger.L.Error("Error listing categories", "error", err)
		utils.SendJSONError(w, "Error fetching categories from the finance API", http.StatusBadGateway)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	utils.SendJSON(w, categories, http.StatusOK)
}
