package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/finbook/backend/src/database"
	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/model"
	"github.com/username/finbook/backend/src/models"
	"github.com/username/finbook/backend/src/review"
	"github.com/username/finbook/backend/src/services"
	"github.com/username/finbook/backend/src/utils"
)

// ReviewHandler exposes the reconciliation operations over REST. Every
// mutation goes through the session's operation set; the handler never
// touches working-set items directly.
type ReviewHandler struct {
	store         *review.Store
	importService services.ImportService
}

func NewReviewHandler(store *review.Store, importService services.ImportService) *ReviewHandler {
	return &ReviewHandler{
		store:         store,
		importService: importService,
	}
}

// session resolves the session from the path, enforcing ownership.
func (h *ReviewHandler) session(w http.ResponseWriter, r *http.Request) (*review.Session, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return nil, false
	}
	session, err := h.store.Get(r.PathValue("id"), userID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// transactionIndex parses the {index} path segment.
func transactionIndex(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("index"))
}

func (h *ReviewHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := transactionIndex(r)
	if err != nil {
		utils.SendJSONError(w, "invalid transaction index", http.StatusBadRequest)
		return
	}

	var patch review.FieldPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if patch.TransactionType != nil &&
		*patch.TransactionType != models.CommitIncome && *patch.TransactionType != models.CommitExpense {
		utils.SendJSONError(w, "transaction_type must be 'income' or 'expense'", http.StatusBadRequest)
		return
	}

	if err := session.UpdateField(index, patch); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleToggleInclusion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := transactionIndex(r)
	if err != nil {
		utils.SendJSONError(w, "invalid transaction index", http.StatusBadRequest)
		return
	}
	if err := session.ToggleInclusion(index); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleSetAllIncluded(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Included bool `json:"included"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	session.SetAllIncluded(body.Included)
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleSetAllType(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Type models.CommitType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Type != models.CommitIncome && body.Type != models.CommitExpense {
		utils.SendJSONError(w, "type must be 'income' or 'expense'", http.StatusBadRequest)
		return
	}
	session.SetAllType(body.Type)
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleClearAllCategories(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.ClearAllCategories()
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleRequestDeleteOne(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := transactionIndex(r)
	if err != nil {
		utils.SendJSONError(w, "invalid transaction index", http.StatusBadRequest)
		return
	}
	if err := session.RequestDeleteOne(index); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, review.ErrDeleteInProgress) {
			status = http.StatusConflict
		}
		utils.SendJSONError(w, err.Error(), status)
		return
	}
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleRequestDeleteIncluded(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.RequestDeleteIncluded(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusConflict)
		return
	}
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	removed, err := session.ConfirmDelete()
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Transactions deleted from review session",
		"sessionID", session.ID, "removed", removed)
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleCancelDelete(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.CancelDelete(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, session.View(), http.StatusOK)
}

func (h *ReviewHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	authToken, ok := GetAuthTokenFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication token not found in context", http.StatusUnauthorized)
		return
	}

	report, err := h.importService.Submit(r.Context(), authToken, session)
	if err != nil {
		// Gate failures are operator-recoverable: fix or exclude the
		// offending items and resubmit.
		switch {
		case errors.Is(err, services.ErrIncompleteTransactions),
			errors.Is(err, services.ErrMissingCategories),
			errors.Is(err, services.ErrNothingToSubmit):
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			logger.L.Error("Submission failed", "sessionID", session.ID, "error", err)
			utils.SendJSONError(w, "An internal error occurred during submission.", http.StatusInternalServerError)
		}
		return
	}

	if report.FullSuccess() {
		// The review is finished; the working set is discarded.
		h.store.Delete(session.ID)
	}
	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReviewHandler) HandleListImportRuns(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	runs, err := model.ListImportRunsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Error querying import runs", "userID", userID, "error", err)
		utils.SendJSONError(w, "Error querying import history", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []model.ImportRun{}
	}
	utils.SendJSON(w, runs, http.StatusOK)
}
