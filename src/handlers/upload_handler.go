package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/finbook/backend/src/clients"
	"github.com/username/finbook/backend/src/config"
	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/review"
	"github.com/username/finbook/backend/src/security/validation"
	"github.com/username/finbook/backend/src/utils"
)

// UploadHandler accepts a PDF bank statement, has the parser service
// extract candidate transactions from it, and opens a review session
// over the result.
type UploadHandler struct {
	parser *clients.ParserClient
	store  *review.Store
}

func NewUploadHandler(parser *clients.ParserClient, store *review.Store) *UploadHandler {
	return &UploadHandler{
		parser: parser,
		store:  store,
	}
}

// uploadResponse pairs the new session snapshot with the parser's
// per-run metadata.
type uploadResponse struct {
	Session             review.SessionView `json:"session"`
	DetectedBank        string             `json:"detected_bank"`
	TransactionCount    int                `json:"transaction_count"`
	ConfidenceThreshold float64            `json:"confidence_threshold"`
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large",
			"userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)",
			config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large",
			"userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB",
			config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type",
			"userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := validation.ValidateFileContentByMagicBytes(file); err != nil {
		logger.L.Warn("Server-side file content validation failed",
			"userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	bankHint := r.FormValue("bank")
	logger.L.Info("Processing statement upload",
		"userID", userID, "filename", fileHeader.Filename, "bankHint", bankHint)

	outcome, err := h.parser.ParseStatement(r.Context(), file, fileHeader.Filename, bankHint)
	if err != nil {
		// Parsing fails as a whole; the operator retries from scratch.
		if errors.Is(err, clients.ErrParseFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadGateway)
		} else {
			utils.SendJSONError(w, "An internal error occurred while parsing the statement.", http.StatusInternalServerError)
		}
		return
	}

	session := h.store.Create(userID, outcome.DetectedBank, outcome.Transactions)

	utils.SendJSON(w, uploadResponse{
		Session:             session.View(),
		DetectedBank:        outcome.DetectedBank,
		TransactionCount:    outcome.TransactionCount,
		ConfidenceThreshold: outcome.ConfidenceThreshold,
	}, http.StatusOK)
}
